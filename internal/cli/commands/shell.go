package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/opencadc/votv/internal/cli/output"
	"github.com/opencadc/votv/pkg/view"
	"github.com/spf13/cobra"
)

const shellPrompt = "votv> "

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "shell <file>",
		Short: "Explore a table interactively with column filters",
		Long: `Open an interactive session on a table. Enter COLUMN=EXPRESSION to set a
filter; the filtered rows are printed after every change. Tab completes
column names and, after the =, values from the rows that still match.

Type .help inside the shell for the list of commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, args[0], typ)
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Input type: xml, csv or tsv (default: from file extension)")
	return cmd
}

func runShell(cmd *cobra.Command, path, typ string) error {
	cc := NewCommandContext(cmd)

	res, err := loadTable(cmd.Context(), cc, path, typ)
	if err != nil {
		return err
	}
	v, engine := newView(cc, res.Table())
	defer func() { _ = engine.Close() }()

	session := newShellSession(v, cc.Renderer)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    &shellCompleter{view: v},
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	cc.Renderer.Println(fmt.Sprintf("votv shell (%s, %d rows)", path, len(res.Rows)))
	cc.Renderer.Println("Type .help for commands, .quit to exit")
	cc.Renderer.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		more, err := session.Handle(line)
		if err != nil {
			cc.Renderer.Error(err.Error())
		}
		if !more {
			return nil
		}
	}
}

// historyFile returns the shell history path under the user cache
// directory, or "" to disable history.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "votv")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return ""
	}
	return filepath.Join(dir, "shell_history")
}

// shellSession holds the filter and sort state of one shell.
type shellSession struct {
	view     *view.View
	renderer *output.Renderer
	filters  view.ColumnFilters
	sortCol  string
	sortAsc  bool
}

func newShellSession(v *view.View, r *output.Renderer) *shellSession {
	return &shellSession{view: v, renderer: r, filters: view.ColumnFilters{}, sortAsc: true}
}

// Handle runs one input line. It reports false when the session should end.
func (s *shellSession) Handle(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return true, nil
	}
	if strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}

	col, expr, err := view.ParseColumnFilter(line)
	if err != nil {
		return true, err
	}
	f := s.view.Field(col)
	if f == nil {
		return true, s.unknown(col)
	}
	if strings.TrimSpace(expr) == "" {
		delete(s.filters, f.ID())
	} else {
		s.filters[f.ID()] = expr
	}
	return true, s.show()
}

func (s *shellSession) dotCommand(line string) (bool, error) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return false, nil

	case ".help":
		s.renderer.Printf("%s\n", shellHelp)
		return true, nil

	case ".show":
		return true, s.show()

	case ".columns":
		return true, s.renderer.Dataset(fieldsDataset(s.view.Fields(), s.view.LongestValues()))

	case ".filters":
		s.printFilters()
		return true, nil

	case ".clear":
		if len(parts) < 2 {
			s.filters = view.ColumnFilters{}
			return true, s.show()
		}
		f := s.view.Field(parts[1])
		if f == nil {
			return true, s.unknown(parts[1])
		}
		delete(s.filters, f.ID())
		return true, s.show()

	case ".sort":
		if len(parts) < 2 {
			return true, errors.New("usage: .sort <column> [asc|desc]")
		}
		f := s.view.Field(parts[1])
		if f == nil {
			return true, s.unknown(parts[1])
		}
		s.sortCol = f.ID()
		s.sortAsc = len(parts) < 3 || !strings.EqualFold(parts[2], "desc")
		return true, s.show()

	case ".values":
		if len(parts) < 2 {
			return true, errors.New("usage: .values <column>")
		}
		if s.view.Field(parts[1]) == nil {
			return true, s.unknown(parts[1])
		}
		for _, val := range s.view.Values(parts[1]) {
			s.renderer.Println(val)
		}
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type .help for commands)", command)
	}
}

func (s *shellSession) unknown(col string) error {
	return &view.UnknownColumnError{Column: col, Available: columnIDs(s.view)}
}

func (s *shellSession) show() error {
	recs, err := s.view.Filter(s.filters)
	if err != nil {
		return err
	}
	if s.sortCol != "" {
		if err := s.view.Sort(recs, s.sortCol, s.sortAsc); err != nil {
			return err
		}
	}
	return s.renderer.Dataset(recordsDataset(s.view.Fields(), recs))
}

func (s *shellSession) printFilters() {
	if len(s.filters) == 0 {
		s.renderer.Muted("no filters")
		return
	}
	cols := make([]string, 0, len(s.filters))
	for col := range s.filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		s.renderer.Println(col + "=" + s.filters[col])
	}
}

func columnIDs(v *view.View) []string {
	ids := make([]string, 0, len(v.Fields()))
	for _, f := range v.Fields() {
		ids = append(ids, f.ID())
	}
	return ids
}

const shellHelp = `
Filters:
  COLUMN=EXPR            Set a filter (>10, <=5, 1..5, =exact, *glob*, null, !null)
  COLUMN=                Remove the filter on COLUMN

Commands:
  .show                  Print the filtered rows
  .filters               List the active filters
  .clear [column]        Remove one or all filters
  .sort <column> [desc]  Sort the rows
  .values <column>       List the distinct values of a column
  .columns               Describe the columns
  .help                  Show this help message
  .quit / .exit          Leave the shell
`

var shellCommands = []string{".show", ".filters", ".clear", ".sort", ".values", ".columns", ".help", ".quit", ".exit"}

// shellCompleter completes column names before the = and matching values
// after it.
type shellCompleter struct {
	view *view.View
}

// Do implements readline.AutoCompleter. Candidates are returned as the
// suffixes to append after the typed prefix.
func (c *shellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	col, entered, found := strings.Cut(text, "=")
	if !found {
		if strings.HasPrefix(text, ".") {
			return suffixes(shellCommands, text, " "), len([]rune(text))
		}
		return suffixes(columnIDs(c.view), text, "="), len([]rune(text))
	}

	if c.view.Field(col) == nil {
		return nil, 0
	}
	return suffixes(c.view.Suggest(col, entered), entered, ""), len([]rune(entered))
}

func suffixes(candidates []string, prefix, tail string) [][]rune {
	var out [][]rune
	for _, cand := range candidates {
		if len(cand) > len(prefix) && strings.HasPrefix(cand, prefix) {
			out = append(out, []rune(cand[len(prefix):]+tail))
		}
	}
	return out
}
