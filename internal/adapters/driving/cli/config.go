package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phonetonote/paperweight/internal/adapters/driven/ai"
	"github.com/phonetonote/paperweight/internal/adapters/driven/config/file"
	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/normalisers/pdf"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and initialise the configuration file.

Values are read from config.toml, then overridden by OPENAI_API_KEY and
PAPERWEIGHT_* variables from the environment or the dotenv file.`,
	Annotations: map[string]string{annotationBootstrap: "skip"},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a default configuration file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationBootstrap: "skip"},
	RunE:        runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show the effective settings",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationBootstrap: "skip"},
	RunE:        runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the configuration file path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationBootstrap: "skip"},
	RunE:        runConfigPath,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured services are reachable",
	Long: `Pings the embedding provider, checks the extraction model has credentials
and, when previews are enabled, that pdftoppm is installed.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationBootstrap: "skip"},
	RunE:        runConfigCheck,
}

// readSecret prompts for the API key. Replaced in tests.
var readSecret = readPassword

// checkEmbedding pings the embedding provider. Replaced in tests.
var checkEmbedding = ai.ValidateEmbeddingConfig

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing configuration file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(store.Path()); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", store.Path())
	}

	cmd.Print("OpenAI API key (leave empty to use OPENAI_API_KEY): ")
	key := readSecret()
	cmd.Println()

	if err := file.WriteDefaults(store, key); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	cmd.Printf("Configuration written to %s\n", store.Path())
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	s, err := file.LoadSettings(store, envFile)
	if err != nil {
		return err
	}
	if storePath != "" {
		s.Store.Path = storePath
	}
	printSettings(cmd, &s)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	cmd.Println(store.Path())
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	s, err := file.LoadSettings(store, envFile)
	if err != nil {
		return err
	}

	failed := 0
	report := func(name string, err error) {
		if err != nil {
			failed++
			cmd.Printf("%s %s: %v\n", statusStyle(domain.StatusUnreachable).Render("FAIL"), name, err)
			return
		}
		cmd.Printf("%s %s\n", statusStyle(domain.StatusProcessed).Render("ok"), name)
	}

	report("embedding ("+string(s.Embedding.Provider)+" "+s.Embedding.Model+")",
		checkEmbedding(cmd.Context(), &s.Embedding))

	extractor, err := ai.CreateExtractor(&s.Extraction)
	if err == nil {
		_ = extractor.Close()
	}
	report("extraction ("+s.Extraction.Model+")", err)

	if s.Fetch.RenderPreview {
		err := pdf.CheckAvailable()
		if err != nil {
			err = fmt.Errorf("%w\n%s", err, pdf.InstallInstructions())
		}
		report("pdftoppm", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func printSettings(cmd *cobra.Command, s *domain.Settings) {
	categories := make([]string, 0, len(s.Ingest.Categories))
	for _, c := range s.Ingest.Categories {
		categories = append(categories, c.String())
	}

	cmd.Println(titleStyle.Render("Store"))
	cmd.Println(field("path", s.Store.Path))
	cmd.Println(titleStyle.Render("Source"))
	cmd.Println(field("dir", s.Source.Dir))
	cmd.Println(field("extensions", strings.Join(s.Source.Extensions, ", ")))
	cmd.Println(field("exclude", strings.Join(s.Source.Exclude, ", ")))
	cmd.Println(field("categories", strings.Join(categories, ", ")))
	cmd.Println(titleStyle.Render("Embedding"))
	cmd.Println(field("provider", string(s.Embedding.Provider)))
	cmd.Println(field("model", s.Embedding.Model))
	cmd.Println(field("base url", orDefault(s.Embedding.BaseURL)))
	cmd.Println(field("rate", fmt.Sprintf("%g/s", s.Embedding.RequestsPerSecond)))
	cmd.Println(field("api key", maskAPIKey(s.Embedding.APIKey)))
	cmd.Println(titleStyle.Render("Extraction"))
	cmd.Println(field("model", s.Extraction.Model))
	cmd.Println(field("base url", orDefault(s.Extraction.BaseURL)))
	cmd.Println(field("api key", maskAPIKey(s.Extraction.APIKey)))
	cmd.Println(titleStyle.Render("Fetch"))
	cmd.Println(field("timeout", s.Fetch.Timeout.String()))
	cmd.Println(field("preview", fmt.Sprint(s.Fetch.RenderPreview)))
}

func orDefault(v string) string {
	if v == "" {
		return "(default)"
	}
	return v
}

func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
