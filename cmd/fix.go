package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/prettymuchbryce/fmtcheck/internal/config"
	"github.com/prettymuchbryce/fmtcheck/internal/eol"
	"github.com/prettymuchbryce/fmtcheck/internal/fs"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
)

var fixToggles = []toggle{
	{flag: "no-trailing", rule: "trailing"},
	{flag: "no-tabs", rule: "tabs"},
	{flag: "no-eol", rule: "eol"},
	{flag: "no-eof", rule: "eof"},
	{flag: "clang-format", rule: "clang-format", enable: true},
	{flag: "mode", rule: "mode", enable: true},
}

var (
	fixTabSize  int
	fixEOL      = eol.Native
	fixEncoding string
	fixBackup   bool
	fixDryRun   bool
	fixList     bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Rewrite files so they conform",
	Long: `Strip trailing whitespace, expand tabs, normalize line endings, terminate
the last line and optionally run clang-format and clear executable bits.

Files are only written when their content changes. Writes are atomic and keep
the original permissions; --backup keeps the previous content as <file>.bak.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		afs := afero.NewOsFs()
		cfg, err := loadConfig(afs)
		if err != nil {
			return err
		}

		applyFixFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		if fixList {
			printRules(cmd, rules.AvailableFixes(), cfg.Fix.Fixes)
			return nil
		}

		opts, err := cfg.Options(afs)
		if err != nil {
			return err
		}
		// Create the appropriate filesystem based on dry-run flag
		var filesystem fs.FileSystem
		if fixDryRun {
			filesystem = fs.NewDryRun()
			fmt.Fprintln(cmd.OutOrStdout(), "Dry-run mode enabled - no file will be modified")
		} else {
			filesystem = fs.NewReal()
		}

		trees, err := buildTrees(filesystem, cfg, args)
		if err != nil {
			return err
		}
		runner, err := rules.NewFixRunner(filesystem, opts, newReporter(cmd))
		if err != nil {
			return err
		}

		outcomes := runner.Run(srctree.WalkAll(trees...))
		return resultError(rules.FixErr(outcomes))
	},
}

func applyFixFlags(cmd *cobra.Command, cfg *config.Config) {
	cfg.Fix.Fixes = applyToggles(cmd, cfg.Fix.Fixes, fixToggles)

	if cmd.Flags().Changed("tabsize") {
		cfg.Fix.TabSize = fixTabSize
	}
	if cmd.Flags().Changed("eol") {
		cfg.Check.EOL = fixEOL
	}
	if cmd.Flags().Changed("encoding") {
		cfg.Check.Encoding = fixEncoding
	}
	if cmd.Flags().Changed("backup") {
		cfg.Fix.Backup = fixBackup
	}
}

func init() {
	addToggles(fixCmd, fixToggles)
	fixCmd.Flags().IntVar(&fixTabSize, "tabsize", rules.DefaultTabSize, "spaces per tab (0 keeps tabs)")
	fixCmd.Flags().Var(&fixEOL, "eol", "end of line to write: native, unix or win")
	fixCmd.Flags().StringVar(&fixEncoding, "encoding", rules.DefaultEncoding, "encoding to read and write")
	fixCmd.Flags().BoolVarP(&fixBackup, "backup", "b", false, "keep a .bak copy of modified files")
	fixCmd.Flags().BoolVarP(&fixDryRun, "dry-run", "n", false, "show what would change without writing")
	fixCmd.Flags().BoolVar(&fixList, "list", false, "list available fixes and exit")
	rootCmd.AddCommand(fixCmd)
}
