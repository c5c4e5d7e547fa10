package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaborage/zephyr/internal/commands"
)

var version = "dev" // Will be set during build

func main() {
	global := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "zephyr",
		Short: "Issue HTTP requests through the zephyr client",
		Long: `Command line front end for the zephyr HTTP client.

Requests are composed against a configured root URI, checked against the
expected status codes and reported as failed when they time out or return
anything else.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&global.ConfigFile, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&global.Root, "root", "r", "", "Root URI (overrides client.root)")

	rootCmd.AddCommand(
		commands.NewRequestCommand(global),
		commands.NewURICommand(global),
		commands.NewVersionCommand(version),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(commands.ExitCode(err))
	}
}
