package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/resolvd-ai/resolvd/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "resolvd",
		Short: "Resolvd daemon and CLI",
		Long:  "Resolvd daemon for serving the resolution API, ingesting knowledge snapshots and resolving tickets ad hoc",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.ResolveCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
