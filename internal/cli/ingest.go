package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/resolvd-ai/resolvd/internal/config"
	"github.com/resolvd-ai/resolvd/internal/domain"
)

// IngestCmd returns the ingest command: a one-shot partition rebuild
// for each named category from the configured knowledge source.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <category> [category...]",
		Short: "Rebuild knowledge partitions for the given categories",
		Long: "Read knowledge rows for each category from the configured source " +
			"(KNOWLEDGE_DIR or an S3 snapshot bucket), embed them and atomically " +
			"swap in the rebuilt partitions",
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().String("dir", "", "Read category CSV files from this directory instead of KNOWLEDGE_DIR")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.KnowledgeDir = dir
	}

	app, err := BuildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	source, err := app.KnowledgeSource(ctx)
	if err != nil {
		return err
	}

	var failed int
	for _, category := range args {
		report, err := app.Pipeline.IngestFromSource(ctx, source, category)
		if err != nil {
			log.Printf("ingest %s: %v", category, err)
			failed++
			continue
		}
		printReport(cmd, report)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d categories failed to ingest", failed, len(args))
	}
	return nil
}

func printReport(cmd *cobra.Command, report *domain.IngestionReport) {
	cmd.Printf("%s: inserted=%d updated=%d failed=%d (run %s)\n",
		report.Category, report.Inserted, report.Updated, report.Failed, report.RunID)
	for _, f := range report.Failures {
		cmd.Printf("  row %d: %s\n", f.RowIndex, f.Reason)
	}
}
