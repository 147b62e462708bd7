package billing

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReportRow is one line item flattened out of a saved document.
type ReportRow struct {
	SNo            int     `json:"sno"`
	DocumentNumber string  `json:"document_number"`
	Project        string  `json:"project"`
	Duration       string  `json:"duration"`
	Description    string  `json:"description"`
	Qty            float64 `json:"qty"`
	Price          float64 `json:"price"`
	LineTotal      string  `json:"line_total"`
}

// Revenue sums per-document line totals. The totals snapshot stored with
// each document is not used.
type Revenue struct {
	ByInvoices   float64 `json:"by_invoices"`
	ByQuotations float64 `json:"by_quotations"`
	Today        float64 `json:"today"`
	ThisMonth    float64 `json:"this_month"`
}

type Report struct {
	Rows    []ReportRow `json:"rows"`
	Revenue Revenue     `json:"revenue"`
}

// BuildReport reads every saved invoice, then every saved quotation, and
// flattens their items in stored order.
//
// Today and ThisMonth compare the stored date text with now rendered as
// DD/MM/YYYY (exact match) and MM/YYYY (suffix match). A date saved in any
// other format still counts towards the per-kind rollups but never matches
// either date rollup.
func BuildReport(kv KV, now time.Time) (Report, error) {
	var (
		rep                  Report
		invoices, quotations = decimal.Zero, decimal.Zero
		today, month         = decimal.Zero, decimal.Zero
		todayStr, monthStr   = FormatDate(now), now.Format("01/2006")
	)

	for _, kind := range Kinds {
		raws, err := readList(kv, kind.ListKey())
		if err != nil {
			return Report{}, err
		}
		for i, raw := range raws {
			doc, ok := decodeReportDoc(raw)
			if !ok {
				log.Debug().Str("kind", string(kind)).Int("index", i).Msg("skipping document without items")
				continue
			}

			docTotal := decimal.Zero
			for _, it := range doc.items {
				line := LineTotal(it.qty, it.price)
				docTotal = docTotal.Add(line)
				rep.Rows = append(rep.Rows, ReportRow{
					SNo:            len(rep.Rows) + 1,
					DocumentNumber: orDash(doc.number),
					Project:        orDash(doc.project),
					Duration:       orDash(it.duration),
					Description:    orDash(it.description),
					Qty:            it.qty,
					Price:          it.price,
					LineTotal:      line.StringFixed(2),
				})
			}

			if kind == Invoice {
				invoices = invoices.Add(docTotal)
			} else {
				quotations = quotations.Add(docTotal)
			}
			if doc.date == todayStr {
				today = today.Add(docTotal)
			}
			if strings.HasSuffix(doc.date, monthStr) {
				month = month.Add(docTotal)
			}
		}
	}

	rep.Revenue = Revenue{
		ByInvoices:   round2(invoices),
		ByQuotations: round2(quotations),
		Today:        round2(today),
		ThisMonth:    round2(month),
	}
	return rep, nil
}

type reportDoc struct {
	number, project, date string
	items                 []reportItem
}

type reportItem struct {
	duration, description string
	qty, price            float64
}

// decodeReportDoc is lenient about field types because stored lists may
// have been written by other tools. It fails only when the entry is not an
// object or its items are missing or not an array. An item that is not an
// object still yields a row with empty fields and zero amounts.
func decodeReportDoc(raw json.RawMessage) (reportDoc, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return reportDoc{}, false
	}
	var items []json.RawMessage
	itemsRaw, ok := fields["items"]
	if !ok || json.Unmarshal(itemsRaw, &items) != nil || items == nil {
		return reportDoc{}, false
	}

	doc := reportDoc{
		number:  looseString(fields["number"]),
		project: looseString(fields["projectName"]),
		date:    looseString(fields["date"]),
		items:   make([]reportItem, 0, len(items)),
	}
	for _, itemRaw := range items {
		var it map[string]json.RawMessage
		_ = json.Unmarshal(itemRaw, &it)
		doc.items = append(doc.items, reportItem{
			duration:    looseString(it["duration"]),
			description: looseString(it["description"]),
			qty:         looseNumber(it["qty"]),
			price:       looseNumber(it["price"]),
		})
	}
	return doc, true
}

func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func looseNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return clampAmount(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseAmount(s)
	}
	return 0
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FormatQty renders a quantity without trailing zeros.
func FormatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
