package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/billr/internal/billing"
)

var csvHeader = []string{"S.No", "Document", "Project", "Duration", "Description", "Qty", "Price", "Total"}

// ReportToCSV writes one line per report row. Revenue rollups are not
// included; use ReportToJSON for those.
func ReportToCSV(rep billing.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rep.Rows {
		row := []string{
			fmt.Sprintf("%d", r.SNo),
			r.DocumentNumber,
			r.Project,
			r.Duration,
			r.Description,
			billing.FormatQty(r.Qty),
			billing.FormatMoney(r.Price),
			r.LineTotal,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
