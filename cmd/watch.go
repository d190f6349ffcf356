package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/prettymuchbryce/fmtcheck/daemon"
	"github.com/prettymuchbryce/fmtcheck/internal/config"
	"github.com/prettymuchbryce/fmtcheck/internal/fs"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Check files again whenever they change",
	Long: `Check every selected file once, then watch the trees and re-check files as
they are created or modified.

Changes are debounced to avoid reacting to rapid successive writes. The check
flags of the config file apply. Stops gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		afs := afero.NewOsFs()
		cfg, err := loadConfig(afs)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debounce") {
			cfg.Watch.Debounce = watchDebounce
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		return runWatch(ctx, cmd, afs, cfg, args)
	},
}

func runWatch(ctx context.Context, cmd *cobra.Command, afs afero.Fs, cfg *config.Config, args []string) error {
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

	return daemon.Run(ctx, afs, trees, runner, cfg.Watch.Debounce)
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", config.DefaultWatchConfig().Debounce, "delay between the last change and the re-check")
	rootCmd.AddCommand(watchCmd)
}
