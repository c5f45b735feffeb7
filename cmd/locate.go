package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gnolang/qedit/cursor"
	"github.com/gnolang/qedit/internal"
)

// locateCmd: qedit locate <query> <start> [end]
var locateCmd = &cobra.Command{
	Use:   "locate <query> <start> [end]",
	Short: "List the nodes under a caret or selection, innermost first",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(langName)
		if err != nil {
			return err
		}
		tree := eng.Parse(args[0])
		if tree == nil {
			return fmt.Errorf("empty query")
		}

		start, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid start offset %q", args[1])
		}
		c := cursor.At(start)
		if len(args) == 3 {
			end, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid end offset %q", args[2])
			}
			c = cursor.Selection(start, end)
		}

		out := cmd.OutOrStdout()
		for _, id := range cursor.NodesAt(tree, c) {
			path := internal.FormatPath(tree.Path(id))
			if path == "" {
				path = "."
			}
			span := tree.Span(id)
			fmt.Fprintf(out, "%-8s %d-%d %s\n", path, span.Start, span.End, tree.Describe(id))
		}
		return nil
	},
}
