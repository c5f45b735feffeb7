package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/qedit/cst"
	"github.com/gnolang/qedit/cursor"
	"github.com/gnolang/qedit/formatter"
	"github.com/gnolang/qedit/internal"
	"github.com/gnolang/qedit/internal/fixer"
)

var (
	nodePath  string
	caretSpec string
	showDiff  bool
	queryFile string
	queryLine int
	dryRun    bool
)

// editCmd: qedit edit <op> [query] [key=value...]
var editCmd = &cobra.Command{
	Use:   "edit <op> [query] [key=value...]",
	Short: "Apply one structural edit operation to a query",
	Long: `Apply one structural edit operation and print the new query text.

The target node is chosen with --path (child indices from the root, such as
"0.1") or with --at (a caret offset "12" or a selection "3:9"). With --file
and --line the query is read from a query file and written back.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(langName)
		if err != nil {
			return err
		}
		op, rest := args[0], args[1:]

		query, rest, err := querySource(rest)
		if err != nil {
			return err
		}
		opArgs, err := parseArgs(rest)
		if err != nil {
			return err
		}

		tree := eng.Parse(query)
		if tree != nil && tree.HasErrors() {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDiagnostics("<query>", query, tree.Errors))
			return ErrIssuesFound
		}
		id, err := selectNode(tree)
		if err != nil {
			return err
		}

		res, err := eng.Apply(tree, op, id, opArgs)
		if err != nil {
			return err
		}
		return writeResult(cmd, query, res.Text)
	},
}

func init() {
	addEditFlags(editCmd)
	editCmd.Flags().StringVarP(&nodePath, "path", "p", "", "child-index path of the target node")
	editCmd.Flags().StringVar(&caretSpec, "at", "", "caret offset or start:end selection of the target node")
}

func addEditFlags(c *cobra.Command) {
	c.Flags().BoolVar(&showDiff, "diff", false, "show the change as an inline diff")
	c.Flags().StringVarP(&queryFile, "file", "f", "", "read the query from this query file")
	c.Flags().IntVar(&queryLine, "line", 1, "line of the query in --file")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "with --file, print the change instead of writing it")
}

// querySource returns the query text and the arguments left after it.
func querySource(args []string) (string, []string, error) {
	if queryFile == "" {
		if len(args) == 0 {
			return "", nil, fmt.Errorf("missing query argument")
		}
		return args[0], args[1:], nil
	}
	line, err := readLine(queryFile, queryLine)
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(line), args, nil
}

func readLine(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open query file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for i := 1; sc.Scan(); i++ {
		if i == n {
			return sc.Text(), nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("failed to read query file: %w", err)
	}
	return "", fmt.Errorf("%s has no line %d", path, n)
}

// parseArgs turns key=value pairs into operation arguments.
func parseArgs(pairs []string) (internal.Args, error) {
	args := internal.Args{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not key=value", p)
		}
		args[k] = v
	}
	return args, nil
}

func selectNode(tree *cst.Tree) (cst.NodeID, error) {
	switch {
	case nodePath != "" && caretSpec != "":
		return cst.NoNode, fmt.Errorf("--path and --at are mutually exclusive")
	case nodePath != "":
		return internal.Locate(tree, nodePath)
	case caretSpec != "":
		c, err := parseCaret(caretSpec)
		if err != nil {
			return cst.NoNode, err
		}
		if tree == nil {
			return cst.NoNode, fmt.Errorf("empty query")
		}
		id := cursor.Innermost(tree, c)
		if id == cst.NoNode {
			return cst.NoNode, fmt.Errorf("no node at %s", caretSpec)
		}
		return id, nil
	}
	return cst.NoNode, nil
}

func parseCaret(s string) (cursor.Caret, error) {
	a, b, sel := strings.Cut(s, ":")
	start, err := strconv.Atoi(a)
	if err != nil {
		return cursor.Caret{}, fmt.Errorf("invalid caret %q", s)
	}
	if !sel {
		return cursor.At(start), nil
	}
	end, err := strconv.Atoi(b)
	if err != nil {
		return cursor.Caret{}, fmt.Errorf("invalid selection %q", s)
	}
	return cursor.Selection(start, end), nil
}

func writeResult(cmd *cobra.Command, before, after string) error {
	out := cmd.OutOrStdout()
	if queryFile != "" {
		change := fixer.Change{Line: queryLine, Old: before, New: after}
		if err := fixer.New(dryRun, out).Fix(queryFile, []fixer.Change{change}); err != nil {
			logger.Error("Error writing query file", zap.String("file", queryFile), zap.Error(err))
			return err
		}
		return nil
	}
	if showDiff {
		fmt.Fprintln(out, fixer.Diff(before, after))
		return nil
	}
	fmt.Fprintln(out, after)
	return nil
}
