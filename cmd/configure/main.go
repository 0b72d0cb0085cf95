package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wanderlist/wanderlist/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "wanderlist-configure",
		Short: "Configuration tool for the Wanderlist API",
		Long:  "CLI tool for managing runtime configuration and inspecting the suggestion catalog",
	}

	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewCatalogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
