package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/portolan-hq/tilegate/pkg/cli"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tilegate",
	Short: "Chart tile server with layered configuration",
	Long: `TileGate serves nautical chart tiles through an embedded tile engine.

Chart configurations are plain YAML documents that may extend a base
document; TileGate merges them, builds the tile application, and keeps
it current as configurations change on disk or in a git repository.`,
	Version: Version,
}

// Execute runs the root command and exits with a code that reflects
// the failure class, so wrapper scripts can distinguish configuration
// problems from runtime errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// The completion command below replaces cobra's generated one.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
