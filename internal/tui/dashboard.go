package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/billr/internal/billing"
)

type dashboardModel struct {
	docs   *billing.DocumentStore
	width  int
	height int

	counts billing.Counts
}

func newDashboardModel(docs *billing.DocumentStore) dashboardModel {
	return dashboardModel{docs: docs}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	counts billing.Counts
}

// loadData reads the counts straight from the store. Between loads the
// dashboard is kept current by countsMsg.
func (d dashboardModel) loadData() tea.Cmd {
	docs := d.docs
	return func() tea.Msg {
		return dashboardDataMsg{counts: docs.Counts()}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(dashboardDataMsg); ok {
		d.counts = msg.counts
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderCounts(contentWidth),
		d.renderActions(contentWidth),
	)
}

func (d dashboardModel) renderCounts(w int) string {
	cardWidth := (w - 6) / 2
	if cardWidth < 16 {
		cardWidth = 16
	}

	card := func(label string, n int) string {
		return statCardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Center,
				mutedStyle.Render(label),
				statValueStyle.Render(formatCount(n, "document")),
			),
		)
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Invoices", d.counts.Invoices),
		"  ",
		card("Quotations", d.counts.Quotations),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Saved documents"), "", cards),
	)
}

func (d dashboardModel) renderActions(w int) string {
	rows := []string{
		titleStyle.Render("Quick actions"),
		"",
		"  " + highlightStyle.Render("2") + "  new invoice",
		"  " + highlightStyle.Render("3") + "  new quotation",
		"  " + highlightStyle.Render("4") + "  performance report",
	}
	if d.counts.Invoices+d.counts.Quotations == 0 {
		rows = append(rows, "", mutedStyle.Render("  Nothing saved yet"))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
