// Package handlers wires the CLI commands to the pipeline packages.
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"satirewire/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "satirewire",
		Short: "Satirewire generates, reviews and serves satirical news articles.",
		Long: `Satirewire is the content pipeline behind a satirical news site:
it turns trending topics into satirical articles through a staged
writers'-room chain, filters out anything that touches real tragedy,
scores the result, and routes it to the published set or the human
review queue.

Commands:
  publish   run one generation pass over the current trends
  review    work through the pending queue from the terminal
  serve     start the admin review API and comment endpoints`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./satirewire.yaml)")

	rootCmd.AddCommand(NewPublishCmd())
	rootCmd.AddCommand(NewReviewCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
