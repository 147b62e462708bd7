package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/billr/internal/billing"
	"github.com/sadopc/billr/internal/logger"
)

type formMode int

const (
	formNone formMode = iota
	formHeader
	formRow
)

// documentFormModel edits one invoice or quotation draft.
type documentFormModel struct {
	kind   billing.Kind
	deps   Deps
	width  int
	height int

	draft   *billing.Draft
	initErr error
	cursor  int

	// exporting is set while a PDF render is in flight. Edits are ignored
	// until pdfDoneMsg arrives.
	exporting bool

	formActive bool
	formMode   formMode
	form       *huh.Form

	// Form values as pointers (survive value copies)
	projectName    *string
	hsnCode        *string
	customerName   *string
	billingAddress *string
	paymentMethod  *string
	rowDuration    *string
	rowDescription *string
	rowQty         *string
	rowPrice       *string
}

func newDocumentFormModel(kind billing.Kind, deps Deps) documentFormModel {
	pn, hc, cn, ba, pm := "", "", "", "", ""
	rd, rde, rq, rp := "", "", "", ""
	m := documentFormModel{
		kind:           kind,
		deps:           deps,
		projectName:    &pn,
		hsnCode:        &hc,
		customerName:   &cn,
		billingAddress: &ba,
		paymentMethod:  &pm,
		rowDuration:    &rd,
		rowDescription: &rde,
		rowQty:         &rq,
		rowPrice:       &rp,
	}

	draft, err := billing.NewDraft(kind, deps.IDs, deps.Refs, deps.Now)
	if err != nil {
		l := logger.WithComponent("tui")
		l.Error().Err(err).Str("kind", string(kind)).Msg("start draft")
		m.initErr = err
		return m
	}
	m.draft = draft
	return m
}

func (f *documentFormModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f documentFormModel) update(msg tea.Msg) (documentFormModel, tea.Cmd) {
	if f.formActive && f.form != nil {
		return f.updateForm(msg)
	}

	switch msg := msg.(type) {
	case pdfDoneMsg:
		f.exporting = false
		if msg.err == nil && f.draft != nil {
			if err := f.draft.Reset(); err != nil {
				return f, statusCmd(fmt.Sprintf("Error: %v", err), true)
			}
			f.cursor = 0
		}
		return f, nil

	case tea.KeyMsg:
		if f.exporting || f.draft == nil {
			return f, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if f.cursor > 0 {
				f.cursor--
			}
		case key.Matches(msg, keys.Down):
			if f.cursor < len(f.draft.Items)-1 {
				f.cursor++
			}
		case key.Matches(msg, keys.New):
			f.draft.AddItem()
			f.cursor = len(f.draft.Items) - 1
		case key.Matches(msg, keys.Delete):
			f.draft.RemoveItem(f.cursor)
			if f.cursor >= len(f.draft.Items) && f.cursor > 0 {
				f.cursor--
			}
		case key.Matches(msg, keys.Enter):
			if len(f.draft.Items) > 0 {
				return f.showRowForm()
			}
		case key.Matches(msg, keys.Header):
			return f.showHeaderForm()
		case key.Matches(msg, keys.Save):
			return f, f.save()
		case key.Matches(msg, keys.Clear):
			if err := f.draft.Clear(); err != nil {
				return f, statusCmd(fmt.Sprintf("Error: %v", err), true)
			}
			f.cursor = 0
			return f, statusCmd(f.kind.Title()+" form cleared", false)
		case key.Matches(msg, keys.PDF):
			f.exporting = true
			return f, f.exportPDF()
		}
	}
	return f, nil
}

func (f documentFormModel) save() tea.Cmd {
	docs, kind := f.deps.Docs, f.kind
	doc := f.draft.Record()
	return func() tea.Msg {
		if err := docs.Save(kind, doc); err != nil {
			return statusMsg{text: fmt.Sprintf("Save failed: %v", err), isError: true}
		}
		return documentSavedMsg{kind: kind, number: doc.Number}
	}
}

func (f documentFormModel) exportPDF() tea.Cmd {
	exporter, kind := f.deps.Exporter, f.kind
	doc := f.draft.Record()
	path := filepath.Join(f.deps.ExportDir, f.draft.ExportFilename())
	return func() tea.Msg {
		if exporter == nil {
			return pdfDoneMsg{kind: kind, err: fmt.Errorf("%w: no exporter configured", billing.ErrMissingRenderTarget)}
		}
		if err := exporter.ExportDocument(context.Background(), kind, &doc, path); err != nil {
			l := logger.WithComponent("tui")
			l.Error().Err(err).Str("path", path).Msg("pdf export failed")
			return pdfDoneMsg{kind: kind, path: path, err: err}
		}
		return pdfDoneMsg{kind: kind, path: path}
	}
}

func (f documentFormModel) showHeaderForm() (documentFormModel, tea.Cmd) {
	*f.projectName = f.draft.ProjectName
	*f.hsnCode = f.draft.HSNCode
	*f.customerName = f.draft.CustomerName
	*f.billingAddress = f.draft.BillingAddress
	*f.paymentMethod = f.draft.PaymentMethod

	fields := []huh.Field{
		huh.NewInput().Title("Project name").Value(f.projectName),
		huh.NewInput().Title("HSN code").Value(f.hsnCode),
		huh.NewInput().Title("Customer name").Value(f.customerName),
		huh.NewText().Title("Billing address").Lines(3).Value(f.billingAddress),
	}
	if f.kind == billing.Invoice {
		opts := []huh.Option[string]{huh.NewOption("Not set", "")}
		for _, m := range billing.PaymentMethods {
			opts = append(opts, huh.NewOption(m, m))
		}
		fields = append(fields,
			huh.NewSelect[string]().Title("Payment method").Options(opts...).Value(f.paymentMethod),
		)
	}

	f.form = huh.NewForm(
		huh.NewGroup(fields...).Title(f.kind.Title() + " details"),
	).WithShowHelp(true).WithShowErrors(true)

	f.formActive = true
	f.formMode = formHeader
	return f, f.form.Init()
}

func (f documentFormModel) showRowForm() (documentFormModel, tea.Cmd) {
	item := f.draft.Items[f.cursor]
	*f.rowDuration = item.Duration
	*f.rowDescription = item.Description
	*f.rowQty = billing.FormatQty(item.Qty)
	*f.rowPrice = billing.FormatMoney(item.Price)

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Duration").Value(f.rowDuration),
			huh.NewInput().Title("Description").Value(f.rowDescription),
			huh.NewInput().Title("Quantity").Value(f.rowQty),
			huh.NewInput().Title("Price").Value(f.rowPrice),
		).Title(fmt.Sprintf("Row %d", item.SNo)),
	).WithShowHelp(true).WithShowErrors(true)

	f.formActive = true
	f.formMode = formRow
	return f, f.form.Init()
}

func (f documentFormModel) updateForm(msg tea.Msg) (documentFormModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.closeForm()
			return f, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		f.applyForm()
		f.closeForm()
		return f, nil
	}

	return f, cmd
}

func (f *documentFormModel) applyForm() {
	switch f.formMode {
	case formHeader:
		f.draft.ProjectName = strings.TrimSpace(*f.projectName)
		f.draft.HSNCode = strings.TrimSpace(*f.hsnCode)
		f.draft.CustomerName = strings.TrimSpace(*f.customerName)
		f.draft.BillingAddress = strings.TrimSpace(*f.billingAddress)
		f.draft.PaymentMethod = *f.paymentMethod
	case formRow:
		f.draft.SetItem(f.cursor, *f.rowDuration, *f.rowDescription, *f.rowQty, *f.rowPrice)
	}
}

func (f *documentFormModel) closeForm() {
	f.formActive = false
	f.formMode = formNone
	f.form = nil
}

func (f documentFormModel) view() string {
	w := f.width - 4
	if w < 20 {
		return "Terminal too small"
	}

	if f.draft == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(f.kind.Title()),
			"",
			errorStyle.Render(fmt.Sprintf("Could not start a new %s: %v", f.kind, f.initErr)),
		))
	}

	if f.formActive && f.form != nil {
		title := titleStyle.Render(fmt.Sprintf("%s %s", f.kind.Title(), f.draft.Number))
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", f.form.View()),
		)
	}

	sections := []string{
		f.renderHeader(),
		"",
		f.renderItems(w),
		"",
		f.renderTotals(),
	}
	if f.exporting {
		sections = append(sections, "", warningStyle.Render("Rendering PDF..."))
	}
	sections = append(sections, "",
		mutedStyle.Render("  n: add row  d: remove row  enter: edit row  h: details  s: save  c: clear  p: pdf"),
	)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (f documentFormModel) renderHeader() string {
	d := f.draft
	title := titleStyle.Render(fmt.Sprintf("%s %s", f.kind.Title(), d.Number))
	date := mutedStyle.Render(d.Date)

	field := func(label, value string) string {
		if value == "" {
			value = mutedStyle.Render("-")
		} else {
			value = highlightStyle.Render(value)
		}
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render(label), value)
	}

	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", date),
		field("Customer ID", d.CustomerID),
		field("Customer", d.CustomerName),
		field("Project", d.ProjectName),
		field("HSN code", d.HSNCode),
		field("Address", strings.ReplaceAll(d.BillingAddress, "\n", ", ")),
	}
	if f.kind == billing.Invoice {
		rows = append(rows, field("Payment", d.PaymentMethod))
	}
	return strings.Join(rows, "\n")
}

func (f documentFormModel) renderItems(w int) string {
	if len(f.draft.Items) == 0 {
		return mutedStyle.Render("  No rows. Press n to add one.")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-4s %-12s %-24s %8s %12s %12s",
		"#", "Duration", "Description", "Qty", "Price", "Subtotal")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 78))))

	for i, it := range f.draft.Items {
		cursor := "  "
		style := normalItemStyle
		if i == f.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-4d %-12s %-24s %8s %12s %12s",
			cursor, it.SNo,
			truncate(it.Duration, 12),
			truncate(it.Description, 24),
			billing.FormatQty(it.Qty),
			billing.FormatMoney(it.Price),
			billing.FormatMoney(it.Subtotal),
		)))
	}
	return strings.Join(rows, "\n")
}

func (f documentFormModel) renderTotals() string {
	t := f.draft.Totals
	line := func(label, value string) string {
		return "  " + totalLabelStyle.Render(label) + value
	}
	return strings.Join([]string{
		line("Subtotal", formatRupees(t.Subtotal)),
		line("CGST 9%", formatRupees(t.CGST)),
		line("SGST 9%", formatRupees(t.SGST)),
		line("Total", grandTotalStyle.Render(formatRupees(t.Total))),
	}, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
