package commands

import (
	"fmt"
	"strings"

	"github.com/opencadc/votv/internal/store"
	"github.com/opencadc/votv/pkg/view"
	"github.com/opencadc/votv/pkg/votable"
	"github.com/spf13/cobra"
)

// ExportOptions holds the options for the export command that are not
// configuration. Driver, DSN and table come from config.
type ExportOptions struct {
	Type    string
	Filters []string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the rows of a table into a SQL database",
		Long: `Load a document, apply the column filters and insert the remaining rows
into a database table. The table is created when missing, with column types
derived from the field datatypes. Every run is recorded in the votv_exports
table under a new batch identifier.

Supported drivers: ` + strings.Join(store.Dialects(), ", ") + `.`,
		Example: `  votv export results.xml --driver sqlite --dsn results.db
  votv export results.xml --driver duckdb --dsn obs.duckdb --table observations --filter 'ra=>10'
  VOTV_EXPORT_DSN=postgres://localhost/cadc votv export results.xml --driver postgres`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "Input type: xml, csv or tsv (default: from file extension)")
	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, "Column filter COLUMN=EXPRESSION (repeatable)")
	cmd.Flags().String("driver", "", "Database driver (default: sqlite)")
	cmd.Flags().String("dsn", "", "Database connection string or file path")
	cmd.Flags().String("table", "", "Destination table (default: votable)")

	_ = cmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return store.Dialects(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, path string, opts *ExportOptions) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)

	if err := cc.Cfg.ValidateExport(); err != nil {
		return err
	}
	filters, err := parseFilters(opts.Filters)
	if err != nil {
		return err
	}

	res, err := loadTable(ctx, cc, path, opts.Type)
	if err != nil {
		return err
	}

	v, engine := newView(cc, res.Table())
	defer func() { _ = engine.Close() }()

	recs, err := v.Filter(filters)
	if err != nil {
		return err
	}
	rows := selectRows(recs)

	exp, err := store.Open(ctx, cc.Cfg.Export.Driver, cc.Cfg.Export.DSN, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = exp.Close() }()

	sum, err := exp.Export(ctx, cc.Cfg.Export.Table, v.Fields(), rows)
	if err != nil {
		return err
	}

	cc.Renderer.Success(fmt.Sprintf("Exported %d of %d rows to %s (batch %s)",
		sum.Rows, len(res.Rows), sum.Table, sum.BatchID))
	if sum.Unparsed > 0 {
		cc.Renderer.Warning(fmt.Sprintf("%d timestamp values could not be parsed and were stored as NULL", sum.Unparsed))
	}
	return nil
}

// selectRows returns the source rows of recs, in record order.
func selectRows(recs []view.Record) []*votable.Row {
	out := make([]*votable.Row, 0, len(recs))
	for _, rec := range recs {
		if rec.Row != nil {
			out = append(out, rec.Row)
		}
	}
	return out
}
