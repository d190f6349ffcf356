package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/prettymuchbryce/fmtcheck/internal/config"
)

var commentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // Gray

var dumpDefault bool

var dumpcfgCmd = &cobra.Command{
	Use:   "dumpcfg",
	Short: "Print the effective configuration",
	Long: `Print the configuration a run would use, after merging the config file
over the defaults. With --default, print the commented default config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dumpDefault {
			fmt.Fprint(cmd.OutOrStdout(), config.DefaultContent())
			return nil
		}

		cfg, err := loadConfig(afero.NewOsFs())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), commentStyle.Render("# effective fmtcheck configuration"))
		return cfg.Dump(cmd.OutOrStdout())
	},
}

func init() {
	dumpcfgCmd.Flags().BoolVar(&dumpDefault, "default", false, "print the commented default config file")
	rootCmd.AddCommand(dumpcfgCmd)
}
