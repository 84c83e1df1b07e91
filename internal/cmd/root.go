package cmd

import (
	"github.com/spf13/cobra"

	"github.com/guidecraft/guidecraft/internal/config"
	"github.com/guidecraft/guidecraft/internal/log"
)

var (
	configPath string
	debug      bool

	cfg *config.Config
)

func Root() *cobra.Command {
	cmd := cobra.Command{
		Use:           "guidecraft",
		Short:         "Author and convert interactive product guides",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if debug || cfg.Debug {
				log.Set(true)
			}
			return nil
		},
	}

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&configPath, "config", "", "Path to a guidecraft config file.")
	pflags.BoolVar(&debug, "debug", false, "Enable debug logging.")

	cmd.AddCommand(convertCmd())
	cmd.AddCommand(renderCmd())
	cmd.AddCommand(validateCmd())
	cmd.AddCommand(fmtCmd())

	return &cmd
}
