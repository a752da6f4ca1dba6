package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driving"
	"github.com/phonetonote/paperweight/internal/metrics"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest the papers linked from a directory of notes",
	Long: `Scans every text document under dir (default source.dir) for links to
arXiv papers and PDFs. Each new link is fetched, embedded and summarised,
then recorded with its terminal status. Links already in the store are
skipped.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationModels: "true"},
	RunE:        runIngest,
}

func init() {
	ingestCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address during the run")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errIngestNotConfigured
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := startMetrics(ctx, cmd); err != nil {
		return err
	}

	root := sourceRoot(args)
	cmd.Printf("Ingesting links from %s...\n", root)

	summary, err := ingestor.IngestDirectory(ctx, root)
	if summary != nil {
		printSummary(cmd, summary)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}

// sourceRoot returns the directory argument or the configured source.dir.
func sourceRoot(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return settings.Source.Dir
}

// startMetrics serves the observer's registry when --metrics-addr is set.
// The server stops when ctx is cancelled.
func startMetrics(ctx context.Context, cmd *cobra.Command) error {
	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		return nil
	}
	if observer == nil {
		return fmt.Errorf("metrics requested but no observer configured")
	}
	bound, err := metrics.Serve(ctx, addr, observer)
	if err != nil {
		return fmt.Errorf("starting metrics server: %w", err)
	}
	cmd.PrintErrf("Serving metrics on http://%s/metrics\n", bound)
	return nil
}

// printSummary writes a one-line run summary followed by per-category and
// per-status counts.
func printSummary(cmd *cobra.Command, s *driving.RunSummary) {
	cmd.Printf("Files: %d  Links: %d  New: %d  Skipped: %d  Failed: %d  File errors: %d\n",
		s.Files, s.Links, s.TotalPersisted(), s.Skipped, s.Failed, s.FileErrors)
	for _, category := range domain.AllCategories {
		if n := s.ByCategory[category]; n > 0 {
			cmd.Printf("  %s %d\n", mutedStyle.Render(category.String()), n)
		}
	}
	for _, status := range domain.AllStatuses {
		if n := s.Persisted[status]; n > 0 {
			cmd.Printf("  %s %d\n", statusStyle(status).Render(status.String()), n)
		}
	}
}
