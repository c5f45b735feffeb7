package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// opsCmd: qedit ops
var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the edit operations of the selected language",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(langName)
		if err != nil {
			return err
		}
		for _, op := range eng.Ops() {
			fmt.Fprintln(cmd.OutOrStdout(), op)
		}
		return nil
	},
}
