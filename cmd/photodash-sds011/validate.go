package main

import (
	"fmt"

	"github.com/hjkoskel/sds011dash"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := sds011dash.LoadConfig(configPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config %v is valid\n", configPath)
		fmt.Fprintf(out, "endpoint:          %v\n", cfg.Endpoint)
		if cfg.Simulate {
			fmt.Fprintf(out, "device:            simulated (id %X)\n", cfg.Sim.Id)
		} else {
			fmt.Fprintf(out, "device:            %v\n", cfg.Device)
		}
		fmt.Fprintf(out, "cycle:             %v\n", cfg.SecondsPerCycle.Duration())
		fmt.Fprintf(out, "between reports:   %v\n", cfg.SecondsBetweenReports.Duration())
		fmt.Fprintf(out, "quiet disconnect:  %v\n", cfg.DisconnectInQuietHours)
		if cfg.HumidityPercent != nil {
			fmt.Fprintf(out, "humidity:          %v%%\n", *cfg.HumidityPercent)
		}
		if cfg.Status.Addr != "" {
			fmt.Fprintf(out, "status server:     %v\n", cfg.Status.Addr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
