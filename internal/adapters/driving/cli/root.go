// Package cli implements the paperweight command line.
//
// Commands run against package-level services installed by the Bootstrap
// hook before each command. Tests replace the services directly and leave
// Bootstrap nil.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/core/ports/driving"
	"github.com/phonetonote/paperweight/internal/logger"
	"github.com/phonetonote/paperweight/internal/metrics"
)

// version is set at build time with -ldflags.
var version = "dev"

// annotationBootstrap marks commands that manage their own dependencies.
const annotationBootstrap = "bootstrap"

// annotationModels marks commands that need the fetcher and model clients.
const annotationModels = "models"

// Snapshotter writes a consistent copy of the record store.
type Snapshotter interface {
	Snapshot(ctx context.Context, dest string) (string, error)
	Path() string
}

// Options are the root flags passed to Bootstrap.
type Options struct {
	// ConfigDir holds config.toml. Empty means ~/.paperweight.
	ConfigDir string

	// EnvFile is the dotenv file consulted for overrides.
	EnvFile string

	// StorePath overrides store.path when set.
	StorePath string

	// WithModels requests the fetcher, embedding and extraction clients.
	WithModels bool
}

// Services are the collaborators a command runs against.
type Services struct {
	Settings   domain.Settings
	Ingestor   driving.Ingestor
	Papers     driving.PaperService
	Snapshots  Snapshotter
	NewWatcher func(root string) (driven.SourceWatcher, error)
	Observer   *metrics.Observer
	Close      func() error
}

// BootstrapFunc builds the services for a command.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

// Bootstrap is installed by main. When nil, commands use whatever services
// are already set.
var Bootstrap BootstrapFunc

var (
	settings      = domain.DefaultSettings()
	ingestor      driving.Ingestor
	paperService  driving.PaperService
	snapshotter   Snapshotter
	newWatcher    func(root string) (driven.SourceWatcher, error)
	observer      *metrics.Observer
	closeServices func() error
)

var (
	configDir string
	envFile   string
	storePath string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "paperweight",
	Short: "Collect the papers your notes link to",
	Long: `paperweight scans a tree of text notes for links to papers, fetches
each PDF once, and records its text, embedding and extracted metadata in a
local SQLite store.

Every URL is recorded exactly once with a terminal status, so re-running
over the same notes only processes new links.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.paperweight)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with environment overrides")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "record store path (overrides store.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if Bootstrap == nil || cmd.Annotations[annotationBootstrap] == "skip" {
		return nil
	}

	svc, err := Bootstrap(cmd.Context(), Options{
		ConfigDir:  configDir,
		EnvFile:    envFile,
		StorePath:  storePath,
		WithModels: cmd.Annotations[annotationModels] == "true",
	})
	if err != nil {
		return err
	}
	install(svc)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	if err != nil {
		return fmt.Errorf("closing services: %w", err)
	}
	return nil
}

// install replaces the package-level services.
func install(svc *Services) {
	settings = svc.Settings
	ingestor = svc.Ingestor
	paperService = svc.Papers
	snapshotter = svc.Snapshots
	newWatcher = svc.NewWatcher
	observer = svc.Observer
	closeServices = svc.Close
}

var (
	errIngestNotConfigured   = errors.New("ingest service not configured")
	errPapersNotConfigured   = errors.New("paper service not configured")
	errSnapshotNotConfigured = errors.New("snapshot service not configured")
	errWatchNotConfigured    = errors.New("watcher not configured")
)
