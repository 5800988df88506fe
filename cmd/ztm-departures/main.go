package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/ztm-departures/config"
	"github.com/theoremus-urban-solutions/ztm-departures/internal"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "ztm-departures",
	Short:        "Next departures of Warsaw public transport lines at configured stops",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if cmd.Name() == serveCmd.Name() {
			internal.InitLogging()
		} else {
			internal.InitLoggingTo(os.Stderr)
		}
		if configPath != "" {
			return config.LoadAppConfig(configPath)
		}
		return config.LoadAppConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yml")
	rootCmd.AddCommand(serveCmd, departuresCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
