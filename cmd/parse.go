package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnolang/qedit/cst"
	"github.com/gnolang/qedit/formatter"
)

var showTokens bool

// parseCmd: qedit parse <query>
var parseCmd = &cobra.Command{
	Use:   "parse <query>",
	Short: "Parse a query and print its syntax tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(langName)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		tree := eng.Parse(args[0])
		if tree == nil {
			fmt.Fprintln(out, "empty query")
			return nil
		}
		if tree.HasErrors() {
			fmt.Fprint(out, formatter.FormatDiagnostics("<query>", args[0], tree.Errors))
			return ErrIssuesFound
		}
		if showTokens {
			printTokens(out, tree)
		}
		fmt.Fprint(out, tree.Dump())
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&showTokens, "tokens", false, "print the token table before the tree")
}

func printTokens(out io.Writer, tree *cst.Tree) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKIND\tPOS\tTEXT")
	for _, tok := range tree.Tokens {
		fmt.Fprintf(w, "%d\t%s\t%s\t%q\n", tok.Index, tree.TokenName(tok.Kind), tok.Pos(), tok.Text)
	}
	_ = w.Flush()
	fmt.Fprintln(out)
}
