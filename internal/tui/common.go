package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/billr/internal/billing"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewInvoice
	viewQuotation
	viewPerformance
)

var viewNames = []string{"Dashboard", "Invoice", "Quotation", "Performance"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// countsMsg carries document counts pushed by the store after a save.
type countsMsg billing.Counts

type documentSavedMsg struct {
	kind   billing.Kind
	number billing.DocumentID
}

type pdfDoneMsg struct {
	kind billing.Kind
	path string
	err  error
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatRupees(v float64) string {
	return "₹" + billing.FormatMoney(v)
}

func formatCount(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}
