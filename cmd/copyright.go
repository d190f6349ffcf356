package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/prettymuchbryce/fmtcheck/internal/config"
	"github.com/prettymuchbryce/fmtcheck/internal/copyright"
	"github.com/prettymuchbryce/fmtcheck/internal/fs"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
)

var (
	copyrightTemplate     string
	copyrightTemplateFile string
	copyrightYear         int
	copyrightYearFrom     string
	copyrightNoUpdate     bool
	copyrightHeaderLines  int
	copyrightBackup       bool
	copyrightDryRun       bool
)

var copyrightCmd = &cobra.Command{
	Use:   "copyright [paths...]",
	Short: "Insert or update copyright statements",
	Long: `Bring the copyright statement of every selected file up to the target year.

An existing statement has its year range extended ("2019" becomes "2019-2024").
A file without a statement gets the rendered template, placed after a shebang,
coding line or XML declaration. The template must contain {year}; {name},
{ext} and {date:%Y-%m-%d} are expanded too.

The target year is --year, or taken from --year-from: now (default),
modified (file modification time) or created (file birth time).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		afs := afero.NewOsFs()
		cfg, err := loadConfig(afs)
		if err != nil {
			return err
		}

		if err := applyCopyrightFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Template errors surface here, before any file is touched
		opts, err := cfg.Options(afs)
		if err != nil {
			return err
		}

		var filesystem fs.FileSystem
		if copyrightDryRun {
			filesystem = fs.NewDryRun()
			fmt.Fprintln(cmd.OutOrStdout(), "Dry-run mode enabled - no file will be modified")
		} else {
			filesystem = fs.NewReal()
		}

		trees, err := buildTrees(filesystem, cfg, args)
		if err != nil {
			return err
		}
		runner, err := rules.NewCopyrightRunner(filesystem, opts, newReporter(cmd))
		if err != nil {
			return err
		}

		outcomes := runner.Run(srctree.WalkAll(trees...))
		return resultError(rules.CopyrightErr(outcomes))
	},
}

func applyCopyrightFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("template") {
		cfg.Copyright.Template = copyrightTemplate
		cfg.Copyright.TemplateFile = ""
	}
	if flags.Changed("template-file") {
		cfg.Copyright.TemplateFile = copyrightTemplateFile
		cfg.Copyright.Template = ""
	}
	if flags.Changed("year") {
		cfg.Copyright.Year = copyrightYear
	}
	if flags.Changed("year-from") {
		from, err := copyright.ParseYearFrom(copyrightYearFrom)
		if err != nil {
			return err
		}
		cfg.Copyright.YearFrom = from
	}
	if flags.Changed("no-update") {
		cfg.Copyright.UpdateExisting = !copyrightNoUpdate
	}
	if flags.Changed("header-lines") {
		cfg.Copyright.HeaderLines = copyrightHeaderLines
	}
	if flags.Changed("backup") {
		cfg.Fix.Backup = copyrightBackup
	}
	return nil
}

func init() {
	copyrightCmd.Flags().StringVar(&copyrightTemplate, "template", "", "statement inserted into files without one; must contain {year}")
	copyrightCmd.Flags().StringVar(&copyrightTemplateFile, "template-file", "", "read the template from a file")
	copyrightCmd.Flags().IntVar(&copyrightYear, "year", 0, "target year (default: from --year-from)")
	copyrightCmd.Flags().StringVar(&copyrightYearFrom, "year-from", string(copyright.YearFromNow), "year source: now, modified or created")
	copyrightCmd.Flags().BoolVar(&copyrightNoUpdate, "no-update", false, "leave existing statements unchanged")
	copyrightCmd.Flags().IntVar(&copyrightHeaderLines, "header-lines", copyright.DefaultHeaderLines, "leading lines searched for a statement (0 searches whole files)")
	copyrightCmd.Flags().BoolVarP(&copyrightBackup, "backup", "b", false, "keep a .bak copy of modified files")
	copyrightCmd.Flags().BoolVarP(&copyrightDryRun, "dry-run", "n", false, "show what would change without writing")
	copyrightCmd.MarkFlagsMutuallyExclusive("template", "template-file")
	rootCmd.AddCommand(copyrightCmd)
}
