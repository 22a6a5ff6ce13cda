package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// ViewOptions holds options for the view command.
type ViewOptions struct {
	Type    string
	Filters []string
	Sort    string
	Desc    bool
	Watch   bool
}

// NewViewCommand creates the view command.
func NewViewCommand() *cobra.Command {
	opts := &ViewOptions{}

	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Filter, sort and print the rows of a table",
		Long: `Load a VOTable XML document, or CSV/TSV text, and print its rows.

Filters take the form COLUMN=EXPRESSION and may be repeated; a row is kept
only when every filter passes. Expressions support comparisons (>10, <=5),
ranges (1..5), exact matches (=value), globs (*abc*) and the special
words null and !null. A leading ! negates any expression.`,
		Example: `  # Rows with ra above 10, sorted by dec
  votv view results.xml --filter 'ra=>10' --sort dec

  # Everything except one collection, as JSON
  votv view results.xml --filter 'collection=!CFHT' -o json

  # Re-render whenever the file changes
  votv view results.csv --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "Input type: xml, csv or tsv (default: from file extension)")
	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, "Column filter COLUMN=EXPRESSION (repeatable)")
	cmd.Flags().StringVarP(&opts.Sort, "sort", "s", "", "Column to sort by")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "Sort in descending order")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-render when the file changes")

	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"xml", "csv", "tsv"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runView(cmd *cobra.Command, path string, opts *ViewOptions) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)

	if err := renderView(ctx, cc, path, opts); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	return watchFile(ctx, cc.Logger, path, func() {
		if err := renderView(ctx, cc, path, opts); err != nil {
			cc.Renderer.Error(err.Error())
		}
	})
}

func renderView(ctx context.Context, cc *CommandContext, path string, opts *ViewOptions) error {
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
	if opts.Sort != "" {
		if err := v.Sort(recs, opts.Sort, !opts.Desc); err != nil {
			return err
		}
	}

	return cc.Renderer.Dataset(recordsDataset(v.Fields(), recs))
}
