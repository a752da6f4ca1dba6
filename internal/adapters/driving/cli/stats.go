package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the record store",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if paperService == nil {
		return errPapersNotConfigured
	}

	stats, err := paperService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("%d papers", stats.Total)))
	for _, status := range domain.AllStatuses {
		cmd.Printf("%s %s\n",
			countStyle.Render(fmt.Sprint(stats.ByStatus[status])),
			statusStyle(status).Render(status.String()))
	}
	return nil
}
