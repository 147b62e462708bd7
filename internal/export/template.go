package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/sadopc/billr/internal/billing"
)

// pageWidthPx is the width documents are laid out at before being fitted
// to the page.
const pageWidthPx = 800

var funcs = template.FuncMap{
	"money": billing.FormatMoney,
	"qty":   billing.FormatQty,
}

const documentLayout = `<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{template "title" .}} {{.Doc.Number}}</title>
<style>
body { margin: 0; background: #fff; color: #000; font-family: Helvetica, Arial, sans-serif; font-size: 12px; }
.sheet { width: {{.Width}}px; padding: 24px; box-sizing: border-box; }
h1 { font-size: 22px; margin: 0 0 12px; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
th, td { border: 1px solid #999; padding: 4px 6px; text-align: left; }
td.num, th.num { text-align: right; }
.meta td { border: none; padding: 2px 6px 2px 0; }
.totals { width: 40%; margin-left: auto; }
</style></head>
<body><div class="sheet" id="document">
<h1>{{template "title" .}}</h1>
<table class="meta">
<tr><td>Number</td><td>{{.Doc.Number}}</td><td>Date</td><td>{{.Doc.Date}}</td></tr>
<tr><td>Project</td><td>{{.Doc.ProjectName}}</td><td>HSN Code</td><td>{{.Doc.HSNCode}}</td></tr>
<tr><td>Customer</td><td>{{.Doc.CustomerName}}</td><td>Customer ID</td><td>{{.Doc.CustomerID}}</td></tr>
<tr><td>Billing address</td><td colspan="3">{{.Doc.BillingAddress}}</td></tr>
{{template "extra" .}}
</table>
<table class="items">
<tr><th>S.No</th><th>Duration</th><th>Description</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Subtotal</th></tr>
{{range .Doc.Items}}<tr><td>{{.SNo}}</td><td>{{.Duration}}</td><td>{{.Description}}</td><td class="num">{{qty .Qty}}</td><td class="num">{{money .Price}}</td><td class="num">{{money .Subtotal}}</td></tr>
{{end}}</table>
<table class="totals">
<tr><td>Subtotal</td><td class="num">{{money .Doc.Totals.Subtotal}}</td></tr>
<tr><td>CGST (9%)</td><td class="num">{{money .Doc.Totals.CGST}}</td></tr>
<tr><td>SGST (9%)</td><td class="num">{{money .Doc.Totals.SGST}}</td></tr>
<tr><td><b>Total</b></td><td class="num"><b>{{money .Doc.Totals.Total}}</b></td></tr>
</table>
</div></body></html>`

var kindBlocks = map[billing.Kind]string{
	billing.Invoice: `{{define "title"}}Invoice{{end}}
{{define "extra"}}<tr><td>Payment method</td><td colspan="3">{{.Doc.PaymentMethod}}</td></tr>{{end}}`,
	billing.Quotation: `{{define "title"}}Quotation{{end}}{{define "extra"}}{{end}}`,
}

type templateData struct {
	Doc   *billing.Document
	Width int
}

// Templates holds one parsed document template per kind.
type Templates map[billing.Kind]*template.Template

// DefaultTemplates parses the built-in invoice and quotation templates.
func DefaultTemplates() (Templates, error) {
	base, err := template.New("document").Funcs(funcs).Parse(documentLayout)
	if err != nil {
		return nil, fmt.Errorf("parse document layout: %w", err)
	}
	out := make(Templates, len(kindBlocks))
	for kind, blocks := range kindBlocks {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.Parse(blocks); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		out[kind] = t
	}
	return out, nil
}

// Render produces the HTML for doc. It fails with
// billing.ErrMissingRenderTarget when doc is nil or kind has no template.
func (t Templates) Render(kind billing.Kind, doc *billing.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: no %s to render", billing.ErrMissingRenderTarget, kind)
	}
	tmpl, ok := t[kind]
	if !ok {
		return "", fmt.Errorf("%w: no template for %q", billing.ErrMissingRenderTarget, kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Doc: doc, Width: pageWidthPx}); err != nil {
		return "", fmt.Errorf("render %s %s: %w", kind, doc.Number, err)
	}
	return buf.String(), nil
}
