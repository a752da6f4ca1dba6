package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <dest>",
	Short: "Write a consistent copy of the record store",
	Long: `Writes a single-file copy of the live store that is safe to take while
another process is ingesting. If dest is a directory, the copy is named
after the store with a timestamp suffix.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if snapshotter == nil {
		return errSnapshotNotConfigured
	}

	written, err := snapshotter.Snapshot(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}
	cmd.Printf("Snapshot of %s written to %s\n", snapshotter.Path(), written)
	return nil
}
