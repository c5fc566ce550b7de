// Package main provides the rangecache CLI: interval algebra helpers and a
// scenario runner for the range cache.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "rangecache",
		Short: "Range cache toolkit",
		Long: `rangecache works with ordered interval sets and the layered range cache.

Commands:
  reconcile  Apply a completed fetch to base/top/fetch layers
  diff       Add or subtract interval sets
  simulate   Run a request/complete scenario against a configured cache`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: ./.rangecache.yaml or $HOME/.rangecache.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(reconcileCmd())
	root.AddCommand(diffCmd())
	root.AddCommand(simulateCmd(&flags))
	root.AddCommand(versionCmd())

	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rangecache %s\n", version)
		},
	}
}
