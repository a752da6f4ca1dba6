package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCmd_NotConfigured(t *testing.T) {
	withServices(t, &Services{})

	_, err := executeCommand(t, "snapshot", "/backups")

	assert.ErrorIs(t, err, errSnapshotNotConfigured)
}

func TestSnapshotCmd_WritesCopy(t *testing.T) {
	snap := &mockSnapshotter{}
	withServices(t, &Services{Snapshots: snap})

	out, err := executeCommand(t, "snapshot", "/backups")

	require.NoError(t, err)
	assert.Equal(t, "/backups", snap.dest)
	assert.Contains(t, out, "Snapshot of papers.db written to /backups/papers_2024-01-02_15-04-05.db")
}

func TestSnapshotCmd_Error(t *testing.T) {
	withServices(t, &Services{Snapshots: &mockSnapshotter{err: errors.New("no space left on device")}})

	_, err := executeCommand(t, "snapshot", "/backups")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot failed")
}

func TestSnapshotCmd_RequiresDest(t *testing.T) {
	withServices(t, &Services{Snapshots: &mockSnapshotter{}})

	_, err := executeCommand(t, "snapshot")

	assert.Error(t, err)
}
