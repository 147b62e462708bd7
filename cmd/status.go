package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/billr/internal/billing"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show document counts and what is in the database",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	entries, err := env.store.Entries()
	if err != nil {
		return err
	}
	counts := billing.NewDocumentStore(env.store).Counts()

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		updated := "-"
		if !e.UpdatedAt.IsZero() {
			updated = humanize.Time(e.UpdatedAt)
		}
		rows = append(rows, []string{e.Key, humanize.Bytes(uint64(len(e.Value))), updated})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Key", "Size", "Updated").
		Rows(rows...)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database:   %s\n", env.cfg.DBPath)
	fmt.Fprintf(out, "Invoices:   %d\n", counts.Invoices)
	fmt.Fprintf(out, "Quotations: %d\n", counts.Quotations)
	if len(entries) > 0 {
		fmt.Fprintln(out, t.String())
	}
	return nil
}
