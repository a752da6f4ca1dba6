package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/phonetonote/paperweight/internal/adapters/driven/ai"
	"github.com/phonetonote/paperweight/internal/adapters/driven/config/file"
	"github.com/phonetonote/paperweight/internal/adapters/driven/fetch"
	"github.com/phonetonote/paperweight/internal/adapters/driven/storage/sqlite"
	"github.com/phonetonote/paperweight/internal/adapters/driving/cli"
	"github.com/phonetonote/paperweight/internal/connectors/filesystem"
	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/core/services"
	"github.com/phonetonote/paperweight/internal/logger"
	"github.com/phonetonote/paperweight/internal/metrics"
	"github.com/phonetonote/paperweight/internal/normalisers/pdf"
)

// bootstrap resolves settings and builds the services a command needs.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	cfgStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	s, err := file.LoadSettings(cfgStore, opts.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if opts.StorePath != "" {
		s.Store.Path = opts.StorePath
	}

	store, err := sqlite.NewStore(s.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	logger.Debug("store: %s", store.Path())

	svc := &cli.Services{
		Settings:  s,
		Papers:    services.NewPaperService(store),
		Snapshots: store,
		Close:     store.Close,
	}
	if !opts.WithModels {
		return svc, nil
	}

	if err := wireIngest(svc, store); err != nil {
		_ = store.Close()
		return nil, err
	}
	return svc, nil
}

// wireIngest adds the fetcher, model clients, scanner and observer to svc.
func wireIngest(svc *cli.Services, store *sqlite.Store) error {
	s := svc.Settings

	models, err := ai.Init(&s)
	if err != nil {
		return err
	}
	scanner, err := filesystem.NewScanner(s.Source.Extensions, s.Source.Exclude)
	if err != nil {
		_ = models.Close()
		return fmt.Errorf("source settings: %w", err)
	}

	observer := metrics.NewObserver()
	ingest := services.NewIngestService(store, newFetcher(s.Fetch), models.EmbeddingService, models.Extractor, scanner, s.Ingest.Categories)
	ingest.SetObserver(observer)

	logger.Debug("embedding: %s (%d dimensions)", models.EmbeddingService.ModelName(), models.EmbeddingService.Dimensions())
	logger.Debug("extraction: %s", models.Extractor.ModelName())

	svc.Ingestor = ingest
	svc.Observer = observer
	svc.NewWatcher = func(root string) (driven.SourceWatcher, error) {
		return filesystem.NewWatcher(scanner, root, filesystem.DefaultDebounce), nil
	}
	svc.Close = func() error {
		return errors.Join(models.Close(), store.Close())
	}
	return nil
}

func newFetcher(s domain.FetchSettings) *fetch.Fetcher {
	cfg := fetch.Config{
		Timeout:   s.Timeout,
		UserAgent: "paperweight/" + versionString(),
	}
	if s.RenderPreview {
		if err := pdf.CheckAvailable(); err != nil {
			logger.Warn("previews disabled: %v\n%s", err, pdf.InstallInstructions())
		} else {
			cfg.Renderer = pdf.NewRenderer()
		}
	}
	return fetch.New(pdf.NewExtractor(), cfg)
}

func versionString() string {
	if version == "" {
		return "dev"
	}
	return version
}
