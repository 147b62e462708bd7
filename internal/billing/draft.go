package billing

import (
	"fmt"
	"time"
)

// Draft is a document being edited. It owns the document's identity and
// keeps Totals in step with Items after every change.
type Draft struct {
	Kind           Kind
	Number         DocumentID
	Date           string
	ProjectName    string
	HSNCode        string
	CustomerName   string
	CustomerID     string
	BillingAddress string
	PaymentMethod  string
	Items          []LineItem
	Totals         Totals

	ids  *Allocator
	refs ReferenceGenerator
	now  func() time.Time
}

// NewDraft allocates a number for kind and starts a draft with one empty
// row dated today.
func NewDraft(kind Kind, ids *Allocator, refs ReferenceGenerator, now func() time.Time) (*Draft, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if now == nil {
		now = time.Now
	}
	if refs == nil {
		refs = RandomReferences{}
	}
	d := &Draft{Kind: kind, ids: ids, refs: refs, now: now}
	if err := d.Reset(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reset blanks every field and allocates the next number.
func (d *Draft) Reset() error {
	number, err := d.ids.Next(d.Kind)
	if err != nil {
		return fmt.Errorf("allocate %s number: %w", d.Kind, err)
	}
	*d = Draft{
		Kind:       d.Kind,
		Number:     number,
		Date:       FormatDate(d.now()),
		CustomerID: d.refs.Generate(),
		ids:        d.ids,
		refs:       d.refs,
		now:        d.now,
	}
	d.AddItem()
	return nil
}

// Clear restarts the kind's numbering and resets the draft, so the draft
// gets number 001 again.
func (d *Draft) Clear() error {
	if err := d.ids.ResetCounter(d.Kind.CounterKey()); err != nil {
		return err
	}
	return d.Reset()
}

// AddItem appends a row with quantity 1 and price 0.
func (d *Draft) AddItem() {
	d.Items = append(d.Items, LineItem{Qty: 1})
	d.recalc()
}

// RemoveItem drops row i. Out-of-range indexes are ignored.
func (d *Draft) RemoveItem(i int) {
	if i < 0 || i >= len(d.Items) {
		return
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	d.recalc()
}

// SetItem updates row i from raw form input. Quantity and price that do
// not parse as non-negative numbers become 0.
func (d *Draft) SetItem(i int, duration, description, qty, price string) {
	if i < 0 || i >= len(d.Items) {
		return
	}
	d.Items[i].Duration = duration
	d.Items[i].Description = description
	d.Items[i].Qty = ParseAmount(qty)
	d.Items[i].Price = ParseAmount(price)
	d.recalc()
}

func (d *Draft) recalc() {
	RenumberItems(d.Items)
	d.Totals = ComputeTotals(d.Items)
}

// Record snapshots the draft as a Document ready to save.
func (d *Draft) Record() Document {
	items := make([]LineItem, len(d.Items))
	copy(items, d.Items)
	doc := Document{
		Number:         d.Number,
		Date:           d.Date,
		ProjectName:    d.ProjectName,
		HSNCode:        d.HSNCode,
		CustomerName:   d.CustomerName,
		CustomerID:     d.CustomerID,
		BillingAddress: d.BillingAddress,
		Items:          items,
		Totals:         ComputeTotals(items),
	}
	if d.Kind == Invoice {
		doc.PaymentMethod = d.PaymentMethod
	}
	return doc
}

// ExportFilename is the file name used when exporting the draft.
func (d *Draft) ExportFilename() string {
	return ExportFilename(d.Kind, d.Number, d.now())
}

// ExportFilename names an exported document, falling back to a
// millisecond timestamp when the number is empty.
func ExportFilename(kind Kind, number DocumentID, now time.Time) string {
	id := string(number)
	if id == "" {
		id = fmt.Sprintf("%d", now.UnixMilli())
	}
	return fmt.Sprintf("%s_%s.pdf", kind.Title(), id)
}
