package cmd

import (
	"os"

	"github.com/spf13/cobra"

	// Import for side effects (check/fix registration)
	_ "github.com/prettymuchbryce/fmtcheck/internal/rules/checks"
	_ "github.com/prettymuchbryce/fmtcheck/internal/rules/fixes"
)

var (
	configPath string
	verbose    bool
	debug      bool
	quiet      bool
	noSkip     bool
)

var rootCmd = &cobra.Command{
	Use:   "fmtcheck",
	Short: "fmtcheck - Check and fix whitespace, encoding and copyright conformity of source trees",
	Long: `fmtcheck scans source trees for tabs, inconsistent line endings, trailing
whitespace, encoding errors, overlong lines, a missing newline at end of file,
missing copyright statements and more, and fixes what can be fixed.

Files are selected with glob include and exclude patterns from the config
file. Paths default to the current directory.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		SetupLogging(logLevel("warn"))
	},
}

func SetVersion(v string) {
	rootCmd.Version = v
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: ./.fmtcheck.yaml, then the user config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "report every failing file and log one line per failing check")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log pattern decisions and copyright detection")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().BoolVar(&noSkip, "no-skip", false, "ignore the exclude patterns")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("debug", "quiet")
}
