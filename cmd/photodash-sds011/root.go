package main

import (
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "photodash-sds011",
	Short: "SDS011 air quality module for photo-dash",
	Long: `Polls SDS011 particulate sensor over serial port, classifies PM2.5 and PM10
readings against the AirNow scale and reports them to photo-dash endpoint.

Polling is suppressed during quiet hours fetched from the endpoint.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging on console")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "Path to configuration file (yaml or json)")
}
