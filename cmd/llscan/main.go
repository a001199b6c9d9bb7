package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "llscan",
	Short: "BLE link-layer scanner workbench",
	Long: `Runs the link-layer scanner state machine against a simulated radio.

- simulate: play a scripted set of advertisers against the scanner and
  report what it discovers, including scan responses in active scanning
- decode: classify a raw advertising channel PDU the way the scanner does`,
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(decodeCmd)

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("color", "auto", "Colorize output (auto, always, never)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("llscan %s (%s)\n", version, commit))
}
