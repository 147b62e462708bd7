package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/billr/internal/billing"
)

type jsonExport struct {
	ExportedAt string              `json:"exported_at"`
	Count      int                 `json:"count"`
	Revenue    billing.Revenue     `json:"revenue"`
	Rows       []billing.ReportRow `json:"rows"`
}

func ReportToJSON(rep billing.Report, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(rep.Rows),
		Revenue:    rep.Revenue,
		Rows:       rep.Rows,
	}
	if export.Rows == nil {
		export.Rows = []billing.ReportRow{}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
