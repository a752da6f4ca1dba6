package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/export"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded papers",
	Long: `Lists every record in the store. Use --json for the export format read
by visualisation tools; embeddings are base64 of the packed float32 bytes.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show <url>",
	Short: "Show the record for a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	listCmd.Flags().Bool("json", false, "print records as JSON")
	listCmd.Flags().String("status", "", "only list records with this status")
	listCmd.Flags().Bool("text", false, "include document text in JSON output")
	listCmd.Flags().Bool("embedding", false, "include embeddings in JSON output")
	listCmd.Flags().Bool("preview", false, "include preview images in JSON output")

	showCmd.Flags().Bool("json", false, "print the record as JSON")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if paperService == nil {
		return errPapersNotConfigured
	}

	status, _ := cmd.Flags().GetString("status")
	if status != "" && !domain.PaperStatus(status).IsValid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	records, err := paperService.ScanAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing papers: %w", err)
	}
	records = export.FilterByStatus(records, status)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		var opts export.Options
		opts.Text, _ = cmd.Flags().GetBool("text")
		opts.Embedding, _ = cmd.Flags().GetBool("embedding")
		opts.Preview, _ = cmd.Flags().GetBool("preview")
		return writeJSON(cmd, export.FromRecords(records, opts))
	}

	if len(records) == 0 {
		cmd.Println("No papers recorded.")
		return nil
	}
	for i := range records {
		r := &records[i]
		title := r.Title
		if title == "" {
			title = mutedStyle.Render("(untitled)")
		}
		cmd.Printf("%s %s\n", statusStyle(r.Status).Render(r.Status.String()), title)
		cmd.Printf("%s %s\n", strings.Repeat(" ", 18), mutedStyle.Render(r.URL))
	}
	cmd.Printf("\n%d papers\n", len(records))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errPapersNotConfigured
	}

	record, err := paperService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no paper recorded for %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("getting paper: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd, export.FromRecord(record, export.Options{Text: true}))
	}

	p := export.FromRecord(record, export.Options{})
	title := p.Title
	if title == "" {
		title = "(untitled)"
	}
	cmd.Println(titleStyle.Render(title))
	cmd.Println(field("URL", p.URL))
	cmd.Println(field("Status", statusStyle(record.Status).Render(p.Status)))
	printOptional(cmd, "Authors", strings.Join(p.Authors, ", "))
	printOptional(cmd, "Keywords", strings.Join(p.Keywords, ", "))
	printOptional(cmd, "Published", p.PublishedDate)
	printOptional(cmd, "Institution", p.Institution)
	printOptional(cmd, "Location", p.Location)
	printOptional(cmd, "Identifier", p.Identifier)
	cmd.Println(field("Found in", p.FilePath))
	cmd.Println(field("Text", fmt.Sprintf("%d characters", p.TextLength)))
	if p.Dimensions > 0 {
		cmd.Println(field("Embedding", fmt.Sprintf("%d dimensions", p.Dimensions)))
	}
	if p.Abstract != "" {
		cmd.Printf("\n%s\n", p.Abstract)
	}
	if p.Summary != "" {
		cmd.Printf("\n%s %s\n", mutedStyle.Render("Summary:"), p.Summary)
	}
	return nil
}

func printOptional(cmd *cobra.Command, label, value string) {
	if value != "" {
		cmd.Println(field(label, value))
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
