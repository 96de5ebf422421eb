// Package cmd provides the command-line interface of cachesim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim replays a memory trace against a single-level cache.",
	Long: `cachesim replays a memory trace against a single-level cache and ` +
		`reports hits, misses, and the hit rate. Caches can be fully ` +
		`associative, direct mapped, or set associative, with LRU or FIFO ` +
		`replacement.`,
	SilenceUsage: true,
}

func init() {
	addRootFlags(rootCmd)
}

func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log-level", "info",
		"Log level (panic, fatal, error, warn, info, debug, trace).")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
