package commands

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// driverModules are the export drivers reported by version.
var driverModules = []string{
	"modernc.org/sqlite",
	"github.com/marcboeker/go-duckdb",
	"github.com/jackc/pgx/v5",
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display votv version, VCS revision and export driver versions.`,
		Run: func(cmd *cobra.Command, _ []string) {
			info, _ := debug.ReadBuildInfo()
			writeVersion(cmd.OutOrStdout(), version, info)
		},
	}
}

func writeVersion(w io.Writer, version string, info *debug.BuildInfo) {
	_, _ = fmt.Fprintf(w, "votv v%s\n", version)
	_, _ = fmt.Fprintf(w, "VOTable viewer built with %s\n", runtime.Version())
	for _, d := range buildDetails(info) {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", d[0]+":", d[1])
	}
}

// buildDetails extracts the VCS stamp and export driver versions from the
// binary's build info. Missing entries are left out.
func buildDetails(info *debug.BuildInfo) [][2]string {
	if info == nil {
		return nil
	}

	var out [][2]string
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	if rev := settings["vcs.revision"]; rev != "" {
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if settings["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		out = append(out, [2]string{"revision", rev})
	}
	if t := settings["vcs.time"]; t != "" {
		out = append(out, [2]string{"committed", t})
	}

	deps := make(map[string]string, len(info.Deps))
	for _, d := range info.Deps {
		if d.Replace != nil {
			d = d.Replace
		}
		deps[d.Path] = d.Version
	}
	for _, path := range driverModules {
		if v, ok := deps[path]; ok {
			out = append(out, [2]string{"driver", path + " " + v})
		}
	}
	return out
}
