package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/qedit/check"
	"github.com/gnolang/qedit/formatter"
	"github.com/gnolang/qedit/internal"
)

var (
	checkJsonOutput bool
	checkWorkers    int
	noProgress      bool
)

// checkCmd: qedit check [paths...]
var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Parse every query in the given files or directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, err := internal.ParseLanguage(langName)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		opts := check.Options{
			Extensions: cfg.Check.Extensions,
			Workers:    cfg.Check.Workers,
		}
		if checkWorkers > 0 {
			opts.Workers = checkWorkers
		}
		if !noProgress && !checkJsonOutput {
			opts.Progress = os.Stderr
		}

		reports, err := check.ProcessFiles(ctx, logger, check.QueryChecker{Default: lang}, args, opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if checkJsonOutput {
			d, err := json.Marshal(reports)
			if err != nil {
				logger.Error("Error marshalling reports to JSON", zap.Error(err))
				return err
			}
			fmt.Fprintln(out, string(d))
		} else {
			fmt.Fprint(out, formatter.GenerateFormattedIssue(reports))
		}

		if len(reports) > 0 {
			return ErrIssuesFound
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJsonOutput, "json", false, "output reports in JSON format")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "number of files checked concurrently (default from config)")
	checkCmd.Flags().BoolVar(&noProgress, "no-progress", false, "hide the progress bar")
}
