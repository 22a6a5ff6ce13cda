package commands

import (
	"github.com/Velocidex/ordereddict"
	"github.com/opencadc/votv/internal/cli/output"
	"github.com/opencadc/votv/pkg/rowbuilder"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewFieldsCommand creates the fields command.
func NewFieldsCommand() *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "fields <file>...",
		Short: "Describe the columns of one or more tables",
		Long: `Print the field metadata of each document: identifier, name, datatype,
unit, UCD and xtype, the longest value seen and the filter syntax hint
for the column's datatype. Several documents are loaded concurrently.`,
		Example: `  votv fields results.xml
  votv fields a.xml b.csv -o yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(cmd, args, typ)
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Input type: xml, csv or tsv (default: from file extension)")
	return cmd
}

func runFields(cmd *cobra.Command, paths []string, typ string) error {
	cc := NewCommandContext(cmd)

	results := make([]*rowbuilder.Result, len(paths))
	g, gctx := errgroup.WithContext(cmd.Context())
	for i, path := range paths {
		g.Go(func() error {
			res, err := loadTable(gctx, cc, path, typ)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(paths) == 1 {
		return cc.Renderer.Dataset(fieldsDataset(results[0].Metadata.Fields(), results[0].LongestValues))
	}

	mode := cc.Renderer.EffectiveMode()
	if mode != output.ModeTable && mode != output.ModeMarkdown {
		// Machine-readable formats get one document with a file column.
		combined := output.Dataset{Columns: append([]string{"file"}, fieldColumns...)}
		for i, res := range results {
			ds := fieldsDataset(res.Metadata.Fields(), res.LongestValues)
			combined.Text = ds.Text
			for _, row := range ds.Rows {
				rec := ordereddict.NewDict().Set("file", paths[i])
				for _, col := range fieldColumns {
					v, _ := row.Get(col)
					rec.Set(col, v)
				}
				combined.Rows = append(combined.Rows, rec)
			}
		}
		return cc.Renderer.Dataset(combined)
	}

	for i, res := range results {
		cc.Renderer.Header(2, paths[i])
		if err := cc.Renderer.Dataset(fieldsDataset(res.Metadata.Fields(), res.LongestValues)); err != nil {
			return err
		}
	}
	return nil
}
