package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"safetx/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the service version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("safetx %s\n", config.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
