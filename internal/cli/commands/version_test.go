package commands

import (
	"bytes"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantOut []string
	}{
		{
			name:    "default version",
			version: "0.1.0",
			wantOut: []string{"votv v0.1.0", "VOTable viewer built with go"},
		},
		{
			name:    "dev version",
			version: "dev",
			wantOut: []string{"votv vdev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand("test")

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Long, "Long should not be empty")
}

func TestBuildDetails(t *testing.T) {
	assert.Nil(t, buildDetails(nil))

	info := &debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
		Deps: []*debug.Module{
			{Path: "modernc.org/sqlite", Version: "v1.42.2"},
			{Path: "github.com/spf13/cobra", Version: "v1.10.2"},
			{Path: "github.com/jackc/pgx/v5", Version: "v5.7.5", Replace: &debug.Module{Path: "github.com/jackc/pgx/v5", Version: "v5.7.6"}},
		},
	}

	assert.Equal(t, [][2]string{
		{"revision", "0123456789ab-dirty"},
		{"committed", "2026-10-01T12:00:00Z"},
		{"driver", "modernc.org/sqlite v1.42.2"},
		{"driver", "github.com/jackc/pgx/v5 v5.7.6"},
	}, buildDetails(info))

	buf := new(bytes.Buffer)
	writeVersion(buf, "1.2.3", info)
	assert.Contains(t, buf.String(), "votv v1.2.3\n")
	assert.Contains(t, buf.String(), "  revision:  0123456789ab-dirty\n")
	assert.NotContains(t, buf.String(), "cobra")
}
