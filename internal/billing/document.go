// Package billing implements invoice and quotation numbering, totals,
// persistence and revenue reporting on top of a plain key-value store.
package billing

import (
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the two document types.
type Kind string

const (
	Invoice   Kind = "invoice"
	Quotation Kind = "quotation"
)

// Kinds lists every kind in report order.
var Kinds = []Kind{Invoice, Quotation}

// ParseKind accepts "invoice"/"quotation" and their plurals.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "invoice", "invoices":
		return Invoice, nil
	case "quotation", "quotations":
		return Quotation, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Prefix is prepended to the sequence number of a new document.
func (k Kind) Prefix() string {
	if k == Invoice {
		return "AINV"
	}
	return "AQUT"
}

// CounterKey is the storage key of the kind's sequence counter.
func (k Kind) CounterKey() string { return string(k) + "-count" }

// ListKey is the storage key of the kind's saved documents.
func (k Kind) ListKey() string { return string(k) + "s" }

// Title is the display name, e.g. "Invoice".
func (k Kind) Title() string {
	if k == Invoice {
		return "Invoice"
	}
	return "Quotation"
}

func (k Kind) valid() bool { return k == Invoice || k == Quotation }

// DocumentID is a prefix followed by a zero-padded sequence, e.g. AINV001.
type DocumentID string

// DateLayout is the day/month/year format dates are stored in.
const DateLayout = "02/01/2006"

// FormatDate renders t the way document dates are stored.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// LineItem is one billable row. SNo follows the row's position and is
// rewritten by RenumberItems.
type LineItem struct {
	SNo         int     `json:"sno"`
	Duration    string  `json:"duration"`
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	CGST     float64 `json:"cgst"`
	SGST     float64 `json:"sgst"`
	Total    float64 `json:"total"`
}

// Document is a saved invoice or quotation. Totals is the snapshot taken
// at save time and is never recomputed on read.
type Document struct {
	Number         DocumentID `json:"number"`
	Date           string     `json:"date"`
	ProjectName    string     `json:"projectName"`
	HSNCode        string     `json:"hsnCode"`
	CustomerName   string     `json:"customerName"`
	CustomerID     string     `json:"customerId"`
	BillingAddress string     `json:"billingAddress"`
	Items          []LineItem `json:"items"`
	Totals         Totals     `json:"totals"`
	PaymentMethod  string     `json:"paymentMethod,omitempty"`
}

// PaymentMethods are the choices offered on invoices.
var PaymentMethods = []string{"Bank Transfer", "UPI", "Cash", "Cheque", "Card"}
