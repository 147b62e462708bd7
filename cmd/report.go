package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sadopc/billr/internal/billing"
	"github.com/sadopc/billr/internal/export"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print or export the revenue report",
	Long: `Flatten every saved invoice and quotation into report rows and sum
revenue by kind, for today and for the current month.

Dates are matched as stored (DD/MM/YYYY), so documents saved with any
other date format only count towards the per-kind totals.`,
	Example: `  # Print the report
  billr report

  # Write it to CSV or JSON
  billr report --csv report.csv
  billr report --json report.json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("csv", "", "Write the report rows to a CSV file")
	reportCmd.Flags().String("json", "", "Write the report to a JSON file")
	reportCmd.MarkFlagsMutuallyExclusive("csv", "json")
}

func runReport(cmd *cobra.Command, _ []string) error {
	rep, err := billing.BuildReport(env.store, time.Now())
	if err != nil {
		return err
	}

	csvPath, _ := cmd.Flags().GetString("csv")
	jsonPath, _ := cmd.Flags().GetString("json")

	switch {
	case csvPath != "":
		if err := export.ReportToCSV(rep, csvPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(rep.Rows), csvPath)
	case jsonPath != "":
		if err := export.ReportToJSON(rep, jsonPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(rep.Rows), jsonPath)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), renderReport(rep))
	}
	return nil
}

func renderReport(rep billing.Report) string {
	rows := make([][]string, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, []string{
			strconv.Itoa(r.SNo),
			r.DocumentNumber,
			r.Project,
			r.Duration,
			r.Description,
			billing.FormatQty(r.Qty),
			billing.FormatMoney(r.Price),
			r.LineTotal,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Number", "Project", "Duration", "Description", "Qty", "Price", "Total").
		Rows(rows...)

	rev := rep.Revenue
	summary := fmt.Sprintf(
		"By invoices:   %s\nBy quotations: %s\nToday:         %s\nThis month:    %s",
		billing.FormatMoney(rev.ByInvoices),
		billing.FormatMoney(rev.ByQuotations),
		billing.FormatMoney(rev.Today),
		billing.FormatMoney(rev.ThisMonth),
	)
	return lipgloss.JoinVertical(lipgloss.Left, t.String(), "", summary)
}
