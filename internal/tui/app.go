package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/billr/internal/billing"
	"github.com/sadopc/billr/internal/export"
)

// DocumentExporter writes a rendered document to path.
type DocumentExporter interface {
	ExportDocument(ctx context.Context, kind billing.Kind, doc *billing.Document, path string) error
}

// Deps are the collaborators the UI drives. KV is only read through
// billing.BuildReport; every write goes through Docs or IDs.
type Deps struct {
	KV        billing.KV
	Docs      *billing.DocumentStore
	IDs       *billing.Allocator
	Refs      billing.ReferenceGenerator
	Exporter  DocumentExporter
	ExportDir string
	Now       func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	// counts receives fresh document counts from the store after each save.
	counts chan billing.Counts

	dashboard   dashboardModel
	invoice     documentFormModel
	quotation   documentFormModel
	performance performanceModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(d Deps) App {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Refs == nil {
		d.Refs = billing.RandomReferences{}
	}

	counts := make(chan billing.Counts, 8)
	d.Docs.OnSave(func(c billing.Counts) {
		select {
		case counts <- c:
		default:
		}
	})

	h := help.New()
	h.ShowAll = false

	return App{
		deps:        d,
		activeView:  viewDashboard,
		counts:      counts,
		dashboard:   newDashboardModel(d.Docs),
		invoice:     newDocumentFormModel(billing.Invoice, d),
		quotation:   newDocumentFormModel(billing.Quotation, d),
		performance: newPerformanceModel(d.KV, d.Now),
		help:        h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.loadData(),
		waitForCounts(a.counts),
	)
}

func waitForCounts(ch <-chan billing.Counts) tea.Cmd {
	return func() tea.Msg {
		return countsMsg(<-ch)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.invoice.setSize(a.width, contentHeight)
		a.quotation.setSize(a.width, contentHeight)
		a.performance.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewInvoice)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewQuotation)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewPerformance)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		case key.Matches(msg, keys.Export) && a.activeView == viewPerformance:
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		}

	case dashboardDataMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil

	case reportDataMsg:
		a.performance, _ = a.performance.update(msg)
		return a, nil

	case countsMsg:
		a.dashboard.counts = billing.Counts(msg)
		return a, waitForCounts(a.counts)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case documentSavedMsg:
		a.status = fmt.Sprintf("%s %s saved successfully!", msg.kind.Title(), msg.number)
		a.statusErr = false
		return a, a.performance.refresh()

	case pdfDoneMsg:
		var cmd tea.Cmd
		if msg.kind == billing.Invoice {
			a.invoice, cmd = a.invoice.update(msg)
		} else {
			a.quotation, cmd = a.quotation.update(msg)
		}
		if msg.err != nil {
			a.status = fmt.Sprintf("PDF error: %v", msg.err)
			a.statusErr = true
		} else {
			a.status = "Exported to " + msg.path
			a.statusErr = false
		}
		return a, cmd

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewInvoice:
		a.invoice, cmd = a.invoice.update(msg)
	case viewQuotation:
		a.quotation, cmd = a.quotation.update(msg)
	case viewPerformance:
		a.performance, cmd = a.performance.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewInvoice:
		return a.invoice.formActive
	case viewQuotation:
		return a.quotation.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewPerformance:
		return a.performance.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewInvoice:
		content = a.invoice.view()
	case viewQuotation:
		content = a.quotation.view()
	case viewPerformance:
		content = a.performance.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("billr")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := successStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	busy := ""
	if a.invoice.exporting || a.quotation.exporting {
		busy = warningStyle.Render(" ● rendering PDF")
	}

	left := footerStyle.Render(helpView)
	right := busy + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Report")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case msg.String() == "enter":
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	kv, now, dir := a.deps.KV, a.deps.Now, a.deps.ExportDir
	return func() tea.Msg {
		rep, err := billing.BuildReport(kv, now())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		dateStr := now().Format("2006-01-02")
		if format == 0 {
			path := filepath.Join(dir, fmt.Sprintf("billr-report-%s.csv", dateStr))
			if err := export.ReportToCSV(rep, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
			return exportDoneMsg{path: path}
		}

		path := filepath.Join(dir, fmt.Sprintf("billr-report-%s.json", dateStr))
		if err := export.ReportToJSON(rep, path); err != nil {
			return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
