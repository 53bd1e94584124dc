package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resolvd-ai/resolvd/internal/config"
)

// ResolveCmd returns the resolve command: a one-shot resolution of a
// single ticket against the live knowledge index.
func ResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <ticket-id> <category>",
		Short: "Resolve a single ticket and print the result",
		Long: "Resolve the ticket's status key from metadata, search the scoped " +
			"knowledge partition and print the confidence-tiered result as JSON",
		Args: cobra.ExactArgs(2),
		RunE: runResolve,
	}

	cmd.Flags().StringP("query", "q", "", "Query text; falls back to the category name when empty")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := BuildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	query, _ := cmd.Flags().GetString("query")
	result, err := app.Resolver.GetResponse(ctx, args[0], args[1], query)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
