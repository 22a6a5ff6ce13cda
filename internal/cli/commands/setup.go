package commands

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/opencadc/votv/internal/cli/config"
	"github.com/opencadc/votv/internal/cli/output"
	"github.com/opencadc/votv/pkg/filter"
	"github.com/opencadc/votv/pkg/rowbuilder"
	"github.com/opencadc/votv/pkg/view"
	"github.com/opencadc/votv/pkg/votable"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a renderer for the
// configured output mode.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		mode = output.ModeAuto
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or the defaults when the
// command runs without the root command (tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// loadListener logs ingestion progress.
type loadListener struct {
	rowbuilder.NopListener
	logger *slog.Logger
	path   string
	pages  int
}

func (l *loadListener) OnPageAddEnd() {
	l.pages++
	l.logger.Debug("page loaded", "file", l.path, "page", l.pages)
}

func (l *loadListener) OnDataLoadComplete(res *rowbuilder.Result) {
	l.logger.Debug("document loaded", "file", l.path, "rows", len(res.Rows))
	if res.Metadata == nil {
		return
	}
	for _, info := range res.Metadata.Errors() {
		l.logger.Warn("document reports an error", "file", l.path, "info", info.Value)
	}
}

// isDelimited reports whether typ needs column metadata inferred from the
// header row.
func isDelimited(typ string) bool {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case rowbuilder.TypeCSV, rowbuilder.TypeTSV:
		return true
	}
	return false
}

// loadTable reads and ingests one document. An empty typ is guessed from the
// file extension.
func loadTable(ctx context.Context, cc *CommandContext, path, typ string) (*rowbuilder.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if typ == "" {
		typ = rowbuilder.TypeForPath(path)
	}

	in := rowbuilder.Input{
		Type:   typ,
		Reader: bytes.NewReader(data),
		Mode:   cc.Cfg.Mode(),
	}
	if isDelimited(typ) {
		meta, err := rowbuilder.InferMetadata(bytes.NewReader(data), rowbuilder.Comma(typ))
		if err != nil {
			return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
		}
		in.Metadata = meta
	}

	rb := rowbuilder.NewRowBuilder(&loadListener{logger: cc.Logger, path: path}, cc.Logger)
	rb.PageSize = cc.Cfg.PageSize

	b, err := rowbuilder.NewBuilder(in, rb)
	if err != nil {
		return nil, err
	}
	res, err := b.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return res, nil
}

// newEngine builds a filter engine from the configuration.
func newEngine(cc *CommandContext) *filter.Engine {
	return filter.New(
		filter.WithAnchoredGlobs(cc.Cfg.AnchorGlobs),
		filter.WithCacheSize(cc.Cfg.CacheSize),
		filter.WithLogger(cc.Logger),
	)
}

// newView wraps a loaded table. The caller closes the returned engine.
func newView(cc *CommandContext, table *votable.Table) (*view.View, *filter.Engine) {
	engine := newEngine(cc)
	return view.New(table, engine, view.WithLogger(cc.Logger)), engine
}

// parseFilters turns repeated COL=EXPR flags into column filters. A later
// filter on the same column replaces an earlier one.
func parseFilters(specs []string) (view.ColumnFilters, error) {
	filters := make(view.ColumnFilters, len(specs))
	for _, s := range specs {
		col, expr, err := view.ParseColumnFilter(s)
		if err != nil {
			return nil, err
		}
		filters[col] = expr
	}
	return filters, nil
}
