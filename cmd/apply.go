package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/qedit/internal/script"
)

// applyCmd: qedit apply <script.yaml> [query]
var applyCmd = &cobra.Command{
	Use:   "apply <script.yaml> [query]",
	Short: "Run a yaml edit script on a query",
	Long: `Run the steps of an edit script one after the other. Each step is applied
to the query produced by the previous one, parsed again, so paths always
refer to the current text:

  language: fcsql
  steps:
    - op: remove
      path: "0.0.0.1"
    - op: add-quantifier
      path: "0"
      args: {shape: one-or-more}`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := script.Load(args[0])
		if err != nil {
			return err
		}
		lang := langName
		if s.Language != "" && !cmd.Flags().Changed("lang") {
			lang = s.Language
		}
		eng, err := newEngine(lang)
		if err != nil {
			return err
		}

		query, _, err := querySource(args[1:])
		if err != nil {
			return err
		}

		res, err := s.Run(eng, query, logger)
		if err != nil {
			var se *script.StepError
			if errors.As(err, &se) {
				logger.Error("Script stopped", zap.Int("step", se.Index), zap.String("op", se.Op), zap.Error(se.Err))
			}
			return fmt.Errorf("%s: %w", args[0], err)
		}
		return writeResult(cmd, query, res.Text)
	},
}

func init() {
	addEditFlags(applyCmd)
}
