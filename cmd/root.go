package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/qedit/internal"
	"github.com/gnolang/qedit/internal/config"
	"github.com/gnolang/qedit/internal/logging"
)

const defaultTimeout = 5 * time.Minute

// ErrIssuesFound is returned when a query does not parse or a check
// reports diagnostics. The diagnostics have already been printed.
var ErrIssuesFound = errors.New("issues found")

var (
	cfgFile  string
	langName string
	timeout  time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "qedit",
	Short:         "qedit - structural editor for corpus search queries",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == initCmd.Name() {
			cfg = config.Default()
		} else {
			loaded, err := config.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		l, err := logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVarP(&langName, "lang", "l", string(internal.LangFCS), "query language: fcsql or lexcql")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "timeout for long running commands")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(opsCmd)
}

func newEngine(lang string) (*internal.Engine, error) {
	l, err := internal.ParseLanguage(lang)
	if err != nil {
		return nil, err
	}
	return internal.NewEngine(l, cfg.Editor, logger)
}
