package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/prettymuchbryce/fmtcheck/internal/config"
	"github.com/prettymuchbryce/fmtcheck/internal/pathutil"
	"github.com/prettymuchbryce/fmtcheck/internal/report"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
)

// loadConfig finds and loads the config file and applies the persistent flags.
func loadConfig(afs afero.Fs) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}

	path, err := pathutil.FindConfig(afs, configPath, wd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadWithFs(path, afs)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	SetupLogging(logLevel(cfg.Logging.Level))

	switch {
	case path == "":
		slog.Debug("no config file found, using defaults")
	case config.IsDefaultConfig(afs, path):
		slog.Debug("loaded unmodified default config", "path", path)
	default:
		slog.Debug("loaded config", "path", path)
	}

	if noSkip {
		cfg.Paths.NoSkip = true
	}
	return cfg, nil
}

// buildTrees creates one tree per path argument, defaulting to ".".
func buildTrees(afs afero.Fs, cfg *config.Config, args []string) ([]*srctree.Tree, error) {
	m, err := cfg.Matcher()
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	trees := make([]*srctree.Tree, 0, len(args))
	for _, arg := range args {
		trees = append(trees, srctree.New(afs, pathutil.RootPath(arg), m))
	}
	return trees, nil
}

func newReporter(cmd *cobra.Command) report.Reporter {
	return report.NewStructuredWithWriter(cmd.OutOrStdout(), verbose || debug)
}

// toggle ties a boolean flag to a rule. Enable tells whether setting the
// flag turns the rule on or off.
type toggle struct {
	flag   string
	rule   string
	enable bool
}

func addToggles(cmd *cobra.Command, toggles []toggle) {
	for _, t := range toggles {
		if t.enable {
			cmd.Flags().Bool(t.flag, false, "enable the "+t.rule+" rule")
		} else {
			cmd.Flags().Bool(t.flag, false, "disable the "+t.rule+" rule")
		}
	}
}

// applyToggles enables or disables rules for every toggle flag set on the command line.
func applyToggles(cmd *cobra.Command, names config.StringList, toggles []toggle) config.StringList {
	for _, t := range toggles {
		if !cmd.Flags().Changed(t.flag) {
			continue
		}
		v, _ := cmd.Flags().GetBool(t.flag)
		names = setRule(names, t.rule, v == t.enable)
	}
	return names
}

func setRule(names config.StringList, rule string, on bool) config.StringList {
	has := slices.Contains(names, rule)
	switch {
	case on && !has:
		return append(names, rule)
	case !on && has:
		return slices.DeleteFunc(slices.Clone(names), func(n string) bool { return n == rule })
	}
	return names
}

// printRules lists rule names, marking the enabled ones.
func printRules(cmd *cobra.Command, available, enabled []string) {
	for _, name := range available {
		mark := " "
		if slices.Contains(enabled, name) {
			mark = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, name)
	}
}
