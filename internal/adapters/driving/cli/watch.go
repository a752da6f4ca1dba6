package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonetonote/paperweight/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest a directory, then keep ingesting as notes change",
	Long: `Runs a full ingest of dir (default source.dir), then watches the tree
and ingests every text document that is created or modified. Stops on
interrupt.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationModels: "true"},
	RunE:        runWatch,
}

func init() {
	watchCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address while watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errIngestNotConfigured
	}
	if newWatcher == nil {
		return errWatchNotConfigured
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := startMetrics(ctx, cmd); err != nil {
		return err
	}

	root := sourceRoot(args)
	cmd.Printf("Ingesting links from %s...\n", root)
	summary, err := ingestor.IngestDirectory(ctx, root)
	if err != nil {
		return fmt.Errorf("initial ingest failed: %w", err)
	}
	printSummary(cmd, summary)

	w, err := newWatcher(root)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	events, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", root)

	for file := range events {
		if file.Err != nil {
			logger.Error("%s: %v", file.File.Path, file.Err)
			continue
		}
		s, err := ingestor.IngestFile(ctx, file.File.Path)
		if err != nil && ctx.Err() == nil {
			logger.Error("%s: %v", file.File.Path, err)
			continue
		}
		if s != nil && s.TotalPersisted() > 0 {
			cmd.Printf("%s: %d new\n", file.File.Path, s.TotalPersisted())
		}
	}

	cmd.Println("Stopped watching.")
	return nil
}
