package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/billr/internal/billing"
)

// performanceModel shows the revenue rollups and every saved line item.
type performanceModel struct {
	kv     billing.KV
	now    func() time.Time
	width  int
	height int

	report billing.Report
	err    error
	offset int // first visible row

	chart barchart.Model
}

func newPerformanceModel(kv billing.KV, now func() time.Time) performanceModel {
	return performanceModel{
		kv:    kv,
		now:   now,
		chart: barchart.New(60, 10),
	}
}

func (r *performanceModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportDataMsg struct {
	report billing.Report
	err    error
}

func (r performanceModel) refresh() tea.Cmd {
	kv, now := r.kv, r.now
	return func() tea.Msg {
		rep, err := billing.BuildReport(kv, now())
		return reportDataMsg{report: rep, err: err}
	}
}

func (r performanceModel) update(msg tea.Msg) (performanceModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportDataMsg:
		r.report = msg.report
		r.err = msg.err
		if r.offset > r.maxOffset() {
			r.offset = r.maxOffset()
		}
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if r.offset > 0 {
				r.offset--
			}
		case key.Matches(msg, keys.Down):
			if r.offset < r.maxOffset() {
				r.offset++
			}
		}
	}
	return r, nil
}

func (r performanceModel) visibleRows() int {
	n := r.height - 24
	if n < 3 {
		n = 3
	}
	return n
}

func (r performanceModel) maxOffset() int {
	m := len(r.report.Rows) - r.visibleRows()
	if m < 0 {
		return 0
	}
	return m
}

func (r *performanceModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}

	r.chart = barchart.New(chartWidth, 10)

	rev := r.report.Revenue
	bar := func(label string, v float64, c lipgloss.Color) barchart.BarData {
		return barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  label,
				Value: v,
				Style: lipgloss.NewStyle().Foreground(c),
			}},
		}
	}

	r.chart.PushAll([]barchart.BarData{
		bar("Invoices", rev.ByInvoices, colorPrimary),
		bar("Quotations", rev.ByQuotations, colorSecondary),
		bar("Today", rev.Today, colorSuccess),
		bar("Month", rev.ThisMonth, colorWarning),
	})
	r.chart.Draw()
}

func (r performanceModel) view() string {
	w := r.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Performance"), "  ",
		mutedStyle.Render(fmt.Sprintf("as of %s", billing.FormatDate(r.now()))),
	)

	if r.err != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", errorStyle.Render(fmt.Sprintf("  Could not build report: %v", r.err)),
		))
	}

	nav := mutedStyle.Render("  ↑/↓: scroll  e: export report")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.renderRevenue(), "", r.chart.View(), "", r.renderRows(w), "", nav,
		),
	)
}

func (r performanceModel) renderRevenue() string {
	rev := r.report.Revenue
	card := func(label string, v float64) string {
		return statCardStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
			mutedStyle.Render(label),
			statValueStyle.Render(formatRupees(v)),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("By invoices", rev.ByInvoices), " ",
		card("By quotations", rev.ByQuotations), " ",
		card("Today", rev.Today), " ",
		card("This month", rev.ThisMonth),
	)
}

func (r performanceModel) renderRows(w int) string {
	if len(r.report.Rows) == 0 {
		return mutedStyle.Render("  No saved documents")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-4s %-10s %-16s %-10s %-22s %6s %10s %12s",
		"#", "Number", "Project", "Duration", "Description", "Qty", "Price", "Total")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 98))))

	end := min(r.offset+r.visibleRows(), len(r.report.Rows))
	for _, row := range r.report.Rows[r.offset:end] {
		rows = append(rows, fmt.Sprintf("  %-4d %-10s %-16s %-10s %-22s %6s %10s %12s",
			row.SNo,
			truncate(row.DocumentNumber, 10),
			truncate(row.Project, 16),
			truncate(row.Duration, 10),
			truncate(row.Description, 22),
			billing.FormatQty(row.Qty),
			billing.FormatMoney(row.Price),
			highlightStyle.Render(row.LineTotal),
		))
	}
	if len(r.report.Rows) > end || r.offset > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  rows %d-%d of %d", r.offset+1, end, len(r.report.Rows))))
	}

	return strings.Join(rows, "\n")
}
