package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/billr/internal/billing"
	"github.com/sadopc/billr/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var christmas = time.Date(2024, 12, 25, 10, 30, 0, 0, time.UTC)

type fakeExporter struct {
	err   error
	calls int
	kind  billing.Kind
	doc   billing.Document
	path  string
}

func (f *fakeExporter) ExportDocument(_ context.Context, kind billing.Kind, doc *billing.Document, path string) error {
	f.calls++
	f.kind = kind
	f.doc = *doc
	f.path = path
	return f.err
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err, "new memory store")
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestDeps(t *testing.T) (Deps, *fakeExporter) {
	t.Helper()
	s := newTestStore(t)
	exp := &fakeExporter{}
	return Deps{
		KV:        s,
		Docs:      billing.NewDocumentStore(s),
		IDs:       billing.NewAllocator(s),
		Refs:      billing.FixedReference("CUST-TEST01"),
		Exporter:  exp,
		ExportDir: t.TempDir(),
		Now:       func() time.Time { return christmas },
	}, exp
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	deps, _ := newTestDeps(t)
	app := NewApp(deps)

	assert.Equal(t, viewDashboard, app.activeView, "default view should be dashboard")
	assert.False(t, app.showHelp, "help should be hidden by default")
	assert.False(t, app.exportPicking, "export picker should be hidden by default")
	assert.NotNil(t, app.invoice.draft)
	assert.NotNil(t, app.quotation.draft)
}

func TestNewAppAllocatesDraftNumbers(t *testing.T) {
	deps, _ := newTestDeps(t)
	app := NewApp(deps)

	assert.Equal(t, billing.DocumentID("AINV001"), app.invoice.draft.Number)
	assert.Equal(t, billing.DocumentID("AQUT001"), app.quotation.draft.Number)
	assert.Equal(t, "25/12/2024", app.invoice.draft.Date)
	assert.Equal(t, "CUST-TEST01", app.invoice.draft.CustomerID)
}

func TestAppIsFormActiveDefault(t *testing.T) {
	deps, _ := newTestDeps(t)
	assert.False(t, NewApp(deps).isFormActive(), "no forms should be active initially")
}

func TestAppTabSwitching(t *testing.T) {
	deps, _ := newTestDeps(t)
	var m tea.Model = NewApp(deps)

	cases := []struct {
		key  string
		want viewState
	}{
		{"2", viewInvoice},
		{"3", viewQuotation},
		{"4", viewPerformance},
		{"1", viewDashboard},
	}
	for _, c := range cases {
		m, _ = m.Update(keyPress(c.key))
		assert.Equal(t, c.want, m.(App).activeView, "after %q", c.key)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, viewInvoice, m.(App).activeView, "tab from dashboard")
}

func TestAppViewStates(t *testing.T) {
	deps, _ := newTestDeps(t)
	app := NewApp(deps)
	app.width = 120
	app.height = 40

	for _, v := range []viewState{viewDashboard, viewInvoice, viewQuotation, viewPerformance} {
		app.activeView = v
		assert.NotEmpty(t, app.View(), "view %d", v)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	deps, _ := newTestDeps(t)
	app := NewApp(deps)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		assert.Contains(t, header, name)
	}
}

func TestAppLoadingState(t *testing.T) {
	deps, _ := newTestDeps(t)
	// Width 0 means not yet sized
	assert.Equal(t, "Loading...", NewApp(deps).View())
}

func TestAppStatusMessage(t *testing.T) {
	deps, _ := newTestDeps(t)
	var m tea.Model = NewApp(deps)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(statusMsg{text: "test status"})

	assert.Contains(t, m.(App).renderFooter(), "test status")
}

func TestAppSavedMessage(t *testing.T) {
	deps, _ := newTestDeps(t)
	var m tea.Model = NewApp(deps)
	m, _ = m.Update(documentSavedMsg{kind: billing.Invoice, number: "AINV001"})

	app := m.(App)
	assert.Equal(t, "Invoice AINV001 saved successfully!", app.status)
	assert.False(t, app.statusErr)
}

// ============================================================
// Counts
// ============================================================

func TestDashboardLoadData(t *testing.T) {
	deps, _ := newTestDeps(t)
	require.NoError(t, deps.Docs.Save(billing.Quotation, billing.Document{Number: "AQUT009"}))

	d := newDashboardModel(deps.Docs)
	d, _ = d.update(d.loadData()())
	assert.Equal(t, billing.Counts{Quotations: 1}, d.counts)
}

func TestSaveNotifiesApp(t *testing.T) {
	deps, _ := newTestDeps(t)
	app := NewApp(deps)

	require.NoError(t, deps.Docs.Save(billing.Invoice, billing.Document{Number: "AINV001"}))

	var m tea.Model = app
	m, cmd := m.Update(waitForCounts(app.counts)())
	assert.NotNil(t, cmd, "counts handler should resubscribe")
	assert.Equal(t, 1, m.(App).dashboard.counts.Invoices)
}

// ============================================================
// Document form
// ============================================================

func TestDocumentFormAddRemoveRows(t *testing.T) {
	deps, _ := newTestDeps(t)
	f := newDocumentFormModel(billing.Invoice, deps)

	f, _ = f.update(keyPress("n"))
	f, _ = f.update(keyPress("n"))
	require.Len(t, f.draft.Items, 3)
	assert.Equal(t, 2, f.cursor)

	f, _ = f.update(keyPress("d"))
	require.Len(t, f.draft.Items, 2)
	assert.Equal(t, 1, f.cursor)
	for i, it := range f.draft.Items {
		assert.Equal(t, i+1, it.SNo)
	}
}

func TestDocumentFormApplyRow(t *testing.T) {
	deps, _ := newTestDeps(t)
	f := newDocumentFormModel(billing.Invoice, deps)

	*f.rowDuration = "2 weeks"
	*f.rowDescription = "Design"
	*f.rowQty = "2"
	*f.rowPrice = "500"
	f.formMode = formRow
	f.applyForm()

	it := f.draft.Items[0]
	assert.Equal(t, 2.0, it.Qty)
	assert.Equal(t, 500.0, it.Price)
	assert.Equal(t, 1000.0, it.Subtotal)
	assert.Equal(t, 1180.0, f.draft.Totals.Total)
}

func TestDocumentFormApplyRowBadNumbers(t *testing.T) {
	deps, _ := newTestDeps(t)
	f := newDocumentFormModel(billing.Quotation, deps)

	*f.rowQty = "abc"
	*f.rowPrice = "-5"
	f.formMode = formRow
	f.applyForm()

	assert.Zero(t, f.draft.Totals.Total)
}

func TestDocumentFormHeaderForm(t *testing.T) {
	deps, _ := newTestDeps(t)
	f := newDocumentFormModel(billing.Invoice, deps)

	f, _ = f.showHeaderForm()
	require.True(t, f.formActive)
	require.Equal(t, formHeader, f.formMode)

	*f.projectName = "  Website  "
	*f.customerName = "Acme"
	*f.paymentMethod = "UPI"
	f.applyForm()
	assert.Equal(t, "Website", f.draft.ProjectName)
	assert.Equal(t, "Acme", f.draft.CustomerName)
	assert.Equal(t, "UPI", f.draft.PaymentMethod)

	f, _ = f.update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, f.formActive, "esc should close the form")
}

func TestDocumentFormSave(t *testing.T) {
	deps, _ := newTestDeps(t)
	f := newDocumentFormModel(billing.Invoice, deps)

	f, cmd := f.update(keyPress("s"))
	require.NotNil(t, cmd, "save should return a command")
	msg, ok := cmd().(documentSavedMsg)
	require.True(t, ok, "expected documentSavedMsg")

	assert.Equal(t, billing.DocumentID("AINV001"), msg.number)
	assert.Equal(t, 1, deps.Docs.Count(billing.Invoice))
	// Saving keeps the draft as it was.
	assert.Equal(t, billing.DocumentID("AINV001"), f.draft.Number)
}

func TestDocumentFormClear(t *testing.T) {
	deps, _ := newTestDeps(t)
	f := newDocumentFormModel(billing.Invoice, deps)

	require.NoError(t, f.draft.Reset())
	require.Equal(t, billing.DocumentID("AINV002"), f.draft.Number)

	f, _ = f.update(keyPress("c"))
	assert.Equal(t, billing.DocumentID("AINV001"), f.draft.Number)
}

func TestDocumentFormExportPDF(t *testing.T) {
	deps, exp := newTestDeps(t)
	f := newDocumentFormModel(billing.Invoice, deps)

	f, cmd := f.update(keyPress("p"))
	require.True(t, f.exporting)

	// Edits are ignored while the export runs.
	f, _ = f.update(keyPress("n"))
	assert.Len(t, f.draft.Items, 1)

	msg, ok := cmd().(pdfDoneMsg)
	require.True(t, ok, "expected pdfDoneMsg")
	require.NoError(t, msg.err)

	want := filepath.Join(deps.ExportDir, "Invoice_AINV001.pdf")
	assert.Equal(t, want, msg.path)
	assert.Equal(t, want, exp.path)
	assert.Equal(t, billing.Invoice, exp.kind)
	assert.Equal(t, billing.DocumentID("AINV001"), exp.doc.Number)

	f, _ = f.update(msg)
	assert.False(t, f.exporting)
	assert.Equal(t, billing.DocumentID("AINV002"), f.draft.Number, "draft should reset to the next number")
}

func TestDocumentFormExportFailureKeepsDraft(t *testing.T) {
	deps, exp := newTestDeps(t)
	exp.err = errors.New("chrome crashed")
	f := newDocumentFormModel(billing.Quotation, deps)

	f, cmd := f.update(keyPress("p"))
	msg := cmd().(pdfDoneMsg)
	require.Error(t, msg.err)

	f, _ = f.update(msg)
	assert.False(t, f.exporting)
	assert.Equal(t, billing.DocumentID("AQUT001"), f.draft.Number, "draft should be kept")
}

func TestDocumentFormNoExporter(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Exporter = nil
	f := newDocumentFormModel(billing.Invoice, deps)

	_, cmd := f.update(keyPress("p"))
	msg := cmd().(pdfDoneMsg)
	assert.ErrorIs(t, msg.err, billing.ErrMissingRenderTarget)
}

func TestAppPDFErrorStatus(t *testing.T) {
	deps, _ := newTestDeps(t)
	var m tea.Model = NewApp(deps)
	m, _ = m.Update(pdfDoneMsg{kind: billing.Invoice, err: billing.ErrMissingRenderTarget})

	app := m.(App)
	assert.True(t, app.statusErr)
	assert.Contains(t, app.status, "PDF error")
}

// ============================================================
// Performance
// ============================================================

func TestPerformanceRefresh(t *testing.T) {
	deps, _ := newTestDeps(t)
	doc := billing.Document{
		Number: "AINV001",
		Date:   "25/12/2024",
		Items:  []billing.LineItem{{SNo: 1, Qty: 2, Price: 150}},
	}
	require.NoError(t, deps.Docs.Save(billing.Invoice, doc))

	p := newPerformanceModel(deps.KV, deps.Now)
	p.setSize(120, 40)
	p, _ = p.update(p.refresh()())

	require.NoError(t, p.err)
	assert.Len(t, p.report.Rows, 1)
	assert.Equal(t, 300.0, p.report.Revenue.Today)
	assert.Equal(t, 300.0, p.report.Revenue.ThisMonth)
	assert.Contains(t, p.view(), "AINV001", "view should list the saved row")
}

func TestPerformanceScrollBounds(t *testing.T) {
	deps, _ := newTestDeps(t)
	p := newPerformanceModel(deps.KV, deps.Now)
	p.setSize(120, 20)

	p, _ = p.update(keyPress("j"))
	assert.Zero(t, p.offset, "no rows to scroll")
	p, _ = p.update(keyPress("k"))
	assert.Zero(t, p.offset)
}

func TestAppExportReport(t *testing.T) {
	deps, _ := newTestDeps(t)
	app := NewApp(deps)

	for i, ext := range []string{".csv", ".json"} {
		msg, ok := app.doExport(i)().(exportDoneMsg)
		require.True(t, ok, "format %d: expected exportDoneMsg", i)
		assert.Equal(t, ext, filepath.Ext(msg.path))
		assert.FileExists(t, msg.path)
	}
}

func TestAppExportPicker(t *testing.T) {
	deps, _ := newTestDeps(t)
	var m tea.Model = NewApp(deps)
	m, _ = m.Update(keyPress("4"))
	m, _ = m.Update(keyPress("e"))
	require.True(t, m.(App).exportPicking, "e on performance should open the export picker")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.(App).exportPicking, "esc should close the export picker")
}

// ============================================================
// Helpers
// ============================================================

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"description", 5, "desc…"},
		{"₹₹₹₹", 2, "₹…"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n), "truncate(%q, %d)", tt.in, tt.n)
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "1 document", formatCount(1, "document"))
	assert.Equal(t, "3 documents", formatCount(3, "document"))
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "₹1180.00", formatRupees(1180))
}

func TestViewNames(t *testing.T) {
	assert.Len(t, viewNames, int(viewPerformance)+1)
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	assert.NotEmpty(t, keys.ShortHelp())
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	require.NotEmpty(t, groups)
	for i, g := range groups {
		assert.NotEmpty(t, g, "full help group %d", i)
	}
}

// ============================================================
// Styles (smoke test, just verify they render)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"statCard", func() string { return statCardStyle.Render("test") }},
		{"grandTotal", func() string { return grandTotalStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
	}

	for _, s := range styles {
		assert.NotEmpty(t, s.fn(), "style %q", s.name)
	}
}
