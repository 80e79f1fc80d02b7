package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivoronin/diskhound/internal/config"
)

// newConfigCmd creates the config subcommand, which prints the
// effective configuration as JSON — handy as a starting point for
// a user config file.
func newConfigCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default "+config.DefaultPath+")")
	return cmd
}
