package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/prettymuchbryce/fmtcheck/internal/config"
	"github.com/prettymuchbryce/fmtcheck/internal/eol"
	"github.com/prettymuchbryce/fmtcheck/internal/fs"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
)

var checkToggles = []toggle{
	{flag: "no-tabs", rule: "tabs"},
	{flag: "no-eol", rule: "eol"},
	{flag: "no-trailing", rule: "trailing"},
	{flag: "no-encoding", rule: "encoding"},
	{flag: "no-eof", rule: "eof"},
	{flag: "copyright", rule: "copyright", enable: true},
	{flag: "relative-include", rule: "relative-include", enable: true},
	{flag: "mode", rule: "mode", enable: true},
	{flag: "clang-format", rule: "clang-format", enable: true},
}

var (
	checkLineLen  int
	checkFailFast bool
	checkEOL      = eol.Native
	checkEncoding string
	checkList     bool
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report files that do not conform",
	Long: `Run the enabled checks over every selected file and print how many files
fail each check. Nothing is modified.

Exit status is 0 when every file passes, 1 when a check failed or a file could
not be read, and 2 when --failfast stopped the scan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		afs := afero.NewOsFs()
		cfg, err := loadConfig(afs)
		if err != nil {
			return err
		}

		applyCheckFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		if checkList {
			printRules(cmd, rules.AvailableChecks(), cfg.Check.Checks)
			return nil
		}

		return runCheck(cmd, afs, cfg, args)
	},
}

func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) {
	cfg.Check.Checks = applyToggles(cmd, cfg.Check.Checks, checkToggles)

	if cmd.Flags().Changed("line-length") {
		cfg.Check.MaxLineLen = checkLineLen
		if checkLineLen > 0 {
			cfg.Check.Checks = setRule(cfg.Check.Checks, "linelen", true)
		}
	}
	if cmd.Flags().Changed("failfast") {
		cfg.Check.FailFast = checkFailFast
	}
	if cmd.Flags().Changed("eol") {
		cfg.Check.EOL = checkEOL
	}
	if cmd.Flags().Changed("encoding") {
		cfg.Check.Encoding = checkEncoding
	}
}

func runCheck(cmd *cobra.Command, afs afero.Fs, cfg *config.Config, args []string) error {
	opts, err := cfg.Options(afs)
	if err != nil {
		return err
	}
	trees, err := buildTrees(afs, cfg, args)
	if err != nil {
		return err
	}

	runner, err := rules.NewCheckRunner(fs.NewReadOnly(afs), opts, newReporter(cmd))
	if err != nil {
		return err
	}

	rep := runner.Run(srctree.WalkAll(trees...))
	return resultError(rep.Err())
}

func init() {
	addToggles(checkCmd, checkToggles)
	checkCmd.Flags().IntVarP(&checkLineLen, "line-length", "l", 0, "maximum line length in characters (0 disables)")
	checkCmd.Flags().BoolVarP(&checkFailFast, "failfast", "f", false, "stop at the first failing check")
	checkCmd.Flags().Var(&checkEOL, "eol", "expected end of line: native, unix or win")
	checkCmd.Flags().StringVar(&checkEncoding, "encoding", rules.DefaultEncoding, "expected encoding")
	checkCmd.Flags().BoolVar(&checkList, "list", false, "list available checks and exit")
	rootCmd.AddCommand(checkCmd)
}
