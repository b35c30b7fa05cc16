package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"safetx/logx"
)

var rootCmd = &cobra.Command{
	Use:   "safetx",
	Short: "Multisig transaction history service",
	Long:  "Off-chain coordination service that tracks multisig wallet transaction proposals and their owner confirmations.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
