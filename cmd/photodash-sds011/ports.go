package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/hjkoskel/listserialports"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:     "ports",
	Aliases: []string{"ls"},
	Short:   "List serial ports",
	Long:    `List serial ports found on this machine. Use one of them as "device" in config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		proped, errProbing := listserialports.Probe(false)
		if errProbing != nil {
			return fmt.Errorf("probing serial ports failed: %w", errProbing)
		}
		if len(proped) == 0 {
			color.Yellow("No serial ports found")
			return nil
		}
		for _, ser := range proped {
			fmt.Fprint(cmd.OutOrStdout(), ser.ToPrintoutFormat())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
