package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "seaway",
	Short: "Seaway - single-link HTTP relay",
	Long: `Seaway funnels HTTP(S) traffic from many local clients through exactly
one persistent TCP connection to a remote executor.

The ship side accepts plain HTTP proxy requests, serializes them onto the
single upstream link in strict FIFO order, and returns each relayed
response to the client that produced the request. The offshore side reads
framed requests off the link, performs the real destination I/O, and
frames the responses back.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
