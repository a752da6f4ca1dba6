package file

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
)

// Environment variables consulted by LoadSettings.
const (
	// EnvOpenAIAPIKey supplies the API key for both OpenAI services.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"

	// EnvPrefix prefixes the per-key overrides, e.g. PAPERWEIGHT_STORE_PATH.
	EnvPrefix = "PAPERWEIGHT_"
)

// Configuration keys.
const (
	KeyStorePath           = "store.path"
	KeySourceDir           = "source.dir"
	KeySourceExtensions    = "source.extensions"
	KeySourceExclude       = "source.exclude"
	KeyIngestCategories    = "ingest.categories"
	KeyEmbeddingProvider   = "embedding.provider"
	KeyEmbeddingModel      = "embedding.model"
	KeyEmbeddingBaseURL    = "embedding.base_url"
	KeyEmbeddingRate       = "embedding.requests_per_second"
	KeyExtractionModel     = "extraction.model"
	KeyExtractionBaseURL   = "extraction.base_url"
	KeyOpenAIAPIKey        = "openai.api_key"
	KeyFetchTimeoutSeconds = "fetch.timeout_seconds"
	KeyFetchRenderPreview  = "fetch.render_preview"
)

// setting binds a configuration key to a field of domain.Settings.
// fromStore copies the stored value; fromString parses an override.
type setting struct {
	key        string
	fromStore  func(s *domain.Settings, store driven.ConfigStore)
	fromString func(s *domain.Settings, v string) error
}

var settingTable = []setting{
	{
		key:        KeyStorePath,
		fromStore:  func(s *domain.Settings, c driven.ConfigStore) { s.Store.Path = c.GetString(KeyStorePath) },
		fromString: func(s *domain.Settings, v string) error { s.Store.Path = v; return nil },
	},
	{
		key:        KeySourceDir,
		fromStore:  func(s *domain.Settings, c driven.ConfigStore) { s.Source.Dir = c.GetString(KeySourceDir) },
		fromString: func(s *domain.Settings, v string) error { s.Source.Dir = v; return nil },
	},
	{
		key: KeySourceExtensions,
		fromStore: func(s *domain.Settings, c driven.ConfigStore) {
			s.Source.Extensions = c.GetStringSlice(KeySourceExtensions)
		},
		fromString: func(s *domain.Settings, v string) error { s.Source.Extensions = splitList(v); return nil },
	},
	{
		key:        KeySourceExclude,
		fromStore:  func(s *domain.Settings, c driven.ConfigStore) { s.Source.Exclude = c.GetStringSlice(KeySourceExclude) },
		fromString: func(s *domain.Settings, v string) error { s.Source.Exclude = splitList(v); return nil },
	},
	{
		key: KeyIngestCategories,
		fromStore: func(s *domain.Settings, c driven.ConfigStore) {
			s.Ingest.Categories = toCategories(c.GetStringSlice(KeyIngestCategories))
		},
		fromString: func(s *domain.Settings, v string) error {
			s.Ingest.Categories = toCategories(splitList(v))
			return nil
		},
	},
	{
		key: KeyEmbeddingProvider,
		fromStore: func(s *domain.Settings, c driven.ConfigStore) {
			s.Embedding.Provider = domain.EmbeddingProvider(c.GetString(KeyEmbeddingProvider))
		},
		fromString: func(s *domain.Settings, v string) error {
			s.Embedding.Provider = domain.EmbeddingProvider(v)
			return nil
		},
	},
	{
		key:        KeyEmbeddingModel,
		fromStore:  func(s *domain.Settings, c driven.ConfigStore) { s.Embedding.Model = c.GetString(KeyEmbeddingModel) },
		fromString: func(s *domain.Settings, v string) error { s.Embedding.Model = v; return nil },
	},
	{
		key:        KeyEmbeddingBaseURL,
		fromStore:  func(s *domain.Settings, c driven.ConfigStore) { s.Embedding.BaseURL = c.GetString(KeyEmbeddingBaseURL) },
		fromString: func(s *domain.Settings, v string) error { s.Embedding.BaseURL = v; return nil },
	},
	{
		key: KeyEmbeddingRate,
		fromStore: func(s *domain.Settings, c driven.ConfigStore) {
			s.Embedding.RequestsPerSecond = c.GetFloat(KeyEmbeddingRate)
		},
		fromString: func(s *domain.Settings, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			s.Embedding.RequestsPerSecond = f
			return nil
		},
	},
	{
		key:        KeyExtractionModel,
		fromStore:  func(s *domain.Settings, c driven.ConfigStore) { s.Extraction.Model = c.GetString(KeyExtractionModel) },
		fromString: func(s *domain.Settings, v string) error { s.Extraction.Model = v; return nil },
	},
	{
		key: KeyExtractionBaseURL,
		fromStore: func(s *domain.Settings, c driven.ConfigStore) {
			s.Extraction.BaseURL = c.GetString(KeyExtractionBaseURL)
		},
		fromString: func(s *domain.Settings, v string) error { s.Extraction.BaseURL = v; return nil },
	},
	{
		key:        KeyOpenAIAPIKey,
		fromStore:  func(s *domain.Settings, c driven.ConfigStore) { setAPIKey(s, c.GetString(KeyOpenAIAPIKey)) },
		fromString: func(s *domain.Settings, v string) error { setAPIKey(s, v); return nil },
	},
	{
		key: KeyFetchTimeoutSeconds,
		fromStore: func(s *domain.Settings, c driven.ConfigStore) {
			s.Fetch.Timeout = time.Duration(c.GetInt(KeyFetchTimeoutSeconds)) * time.Second
		},
		fromString: func(s *domain.Settings, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			s.Fetch.Timeout = time.Duration(n) * time.Second
			return nil
		},
	},
	{
		key: KeyFetchRenderPreview,
		fromStore: func(s *domain.Settings, c driven.ConfigStore) {
			s.Fetch.RenderPreview = c.GetBool(KeyFetchRenderPreview)
		},
		fromString: func(s *domain.Settings, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			s.Fetch.RenderPreview = b
			return nil
		},
	},
}

// EnvName returns the environment variable that overrides key.
// E.g., "store.path" is overridden by PAPERWEIGHT_STORE_PATH.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// LoadSettings resolves settings from defaults, the config store, an
// optional .env file and the process environment, in increasing order of
// precedence. The result is validated.
func LoadSettings(store driven.ConfigStore, envFile string) (domain.Settings, error) {
	s := domain.DefaultSettings()

	if store != nil {
		for _, st := range settingTable {
			if _, ok := store.Get(st.key); ok {
				st.fromStore(&s, store)
			}
		}
	}

	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return s, err
	}
	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok
	}

	if v, ok := lookup(EnvOpenAIAPIKey); ok && v != "" {
		setAPIKey(&s, v)
	}
	for _, st := range settingTable {
		v, ok := lookup(EnvName(st.key))
		if !ok {
			continue
		}
		if err := st.fromString(&s, v); err != nil {
			return s, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, EnvName(st.key), err)
		}
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// readEnvFile parses a .env file. A missing file yields no variables.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

// setAPIKey applies the OpenAI key to both model services.
func setAPIKey(s *domain.Settings, key string) {
	s.Embedding.APIKey = key
	s.Extraction.APIKey = key
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func toCategories(values []string) []domain.Category {
	out := make([]domain.Category, 0, len(values))
	for _, v := range values {
		c, _ := domain.ParseCategory(v)
		out = append(out, c)
	}
	return out
}

// WriteDefaults stores the default settings in store and saves it.
// The API key is written only when non-empty.
func WriteDefaults(store driven.ConfigStore, apiKey string) error {
	d := domain.DefaultSettings()
	categories := make([]string, 0, len(d.Ingest.Categories))
	for _, c := range d.Ingest.Categories {
		categories = append(categories, c.String())
	}

	values := map[string]any{
		KeyStorePath:           d.Store.Path,
		KeySourceDir:           d.Source.Dir,
		KeySourceExtensions:    d.Source.Extensions,
		KeySourceExclude:       []string{},
		KeyIngestCategories:    categories,
		KeyEmbeddingProvider:   string(d.Embedding.Provider),
		KeyEmbeddingModel:      d.Embedding.Model,
		KeyEmbeddingRate:       d.Embedding.RequestsPerSecond,
		KeyExtractionModel:     d.Extraction.Model,
		KeyFetchTimeoutSeconds: int(d.Fetch.Timeout / time.Second),
		KeyFetchRenderPreview:  d.Fetch.RenderPreview,
	}
	if apiKey != "" {
		values[KeyOpenAIAPIKey] = apiKey
	}

	for key, value := range values {
		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}
