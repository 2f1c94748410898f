package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"harborlink/seaway/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load the configuration file, apply defaults and environment variable
overrides, and report whether the result is valid without starting
anything.

Examples:
  seaway validate
  seaway validate --config /etc/seaway/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return err
		}
		fmt.Println("✓ Configuration valid")
		fmt.Printf("  ship listens on %s, relays via %s\n", cfg.Ship.ListenAddress, cfg.Ship.OffshoreAddress)
		fmt.Printf("  offshore listens on %s\n", cfg.Offshore.ListenAddress)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
