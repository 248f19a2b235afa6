package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/camino-saas/camino/internal/invoices"
	"github.com/camino-saas/camino/internal/notes"
)

// Renderer produces printable PDFs for delivery notes and invoices through
// the Gotenberg client.
type Renderer struct {
	client   *Client
	noteT    *template.Template
	invoiceT *template.Template
}

// NewRenderer parses the document templates.
func NewRenderer(client *Client) (*Renderer, error) {
	noteT, err := template.New("note").Funcs(docFuncs).Parse(noteTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse note template: %w", err)
	}
	invoiceT, err := template.New("invoice").Funcs(docFuncs).Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &Renderer{client: client, noteT: noteT, invoiceT: invoiceT}, nil
}

var docFuncs = template.FuncMap{
	"euros": func(cents int64) string {
		return fmt.Sprintf("%.2f", float64(cents)/100)
	},
	"km": func(meters float64) string {
		return fmt.Sprintf("%.1f", meters/1000)
	},
	// Signature captures arrive as data: URLs, which html/template refuses
	// to emit unless marked trusted.
	"imgsrc": func(s string) template.URL {
		return template.URL(s)
	},
}

// RenderNote builds the delivery note document.
func (r *Renderer) RenderNote(ctx context.Context, note *notes.NoteResponse) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.noteT.Execute(&buf, note); err != nil {
		return nil, fmt.Errorf("render note html: %w", err)
	}
	return r.client.RenderHTML(ctx, buf.String())
}

// RenderInvoice builds the invoice document.
func (r *Renderer) RenderInvoice(ctx context.Context, inv *invoices.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.invoiceT.Execute(&buf, inv); err != nil {
		return nil, fmt.Errorf("render invoice html: %w", err)
	}
	return r.client.RenderHTML(ctx, buf.String())
}

const docStyle = `
 body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; margin: 32px; }
 h1 { font-size: 20px; margin-bottom: 4px; }
 table { border-collapse: collapse; width: 100%; margin-top: 12px; }
 th, td { border: 1px solid #999; padding: 6px 8px; text-align: left; }
 th { background: #eee; }
 .meta { color: #555; margin-bottom: 16px; }
 .sigs { margin-top: 24px; display: flex; gap: 48px; }
 .sig { width: 45%; }
 .sig img { max-height: 80px; }
 .stamp { margin-top: 16px; font-weight: bold; }
`

const noteTemplate = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>` + docStyle + `</style></head>
<body>
<h1>Delivery Note #{{.NoteNumber}}</h1>
<div class="meta">{{.Date.Format "02/01/2006"}}{{with .Time}} {{.}}{{end}}</div>

<table>
 <tr><th>Client</th><td>{{.ClientName}}</td></tr>
 <tr><th>Destination</th><td>{{.Destination}}</td></tr>
 {{with .VehicleType}}<tr><th>Vehicle</th><td>{{.}}</td></tr>{{end}}
 {{with .WaitTime}}<tr><th>Wait time</th><td>{{.}} min</td></tr>{{end}}
 {{with .Observations}}<tr><th>Observations</th><td>{{.}}</td></tr>{{end}}
 {{if gt .RouteDistanceMeters 0.0}}<tr><th>Route distance</th><td>{{km .RouteDistanceMeters}} km</td></tr>{{end}}
</table>

<table>
 <tr><th>#</th><th>Pickup</th><th>Address</th></tr>
 {{range $i, $o := .PickupOrigins}}
 <tr><td>{{$i}}</td><td>{{$o.Name}}</td><td>{{$o.Address}}</td></tr>
 {{end}}
</table>

<div class="sigs">
 <div class="sig">
  <h3>Origin</h3>
  {{with .OriginSignature}}<img src="{{imgsrc .}}" alt="origin signature">{{end}}
  {{with .OriginSignatureDocument}}<div>Document: {{.}}</div>{{end}}
  {{with .OriginSignedAt}}<div>{{.Format "02/01/2006 15:04"}}</div>{{end}}
 </div>
 <div class="sig">
  <h3>Destination</h3>
  {{with .DestinationSignature}}<img src="{{imgsrc .}}" alt="destination signature">{{end}}
  {{with .DestinationSignatureDocument}}<div>Document: {{.}}</div>{{end}}
  {{with .DestinationSignedAt}}<div>{{.Format "02/01/2006 15:04"}}</div>{{end}}
 </div>
</div>

{{if .Completion.FullySigned}}<div class="stamp">FULLY SIGNED</div>{{end}}
{{if .IsInvoiced}}<div class="stamp">INVOICED</div>{{end}}
</body></html>`

const invoiceTemplate = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>` + docStyle + `</style></head>
<body>
<h1>Invoice #{{.InvoiceNumber}}</h1>
<div class="meta">{{.IssueDate.Format "02/01/2006"}} &middot; {{.ClientName}}</div>

<table>
 <tr><th>Note</th><th>Description</th><th>Amount (EUR)</th></tr>
 {{range .Lines}}
 <tr><td>#{{.NoteNumber}}</td><td>{{.Description}}</td><td>{{euros .AmountCents}}</td></tr>
 {{end}}
</table>

<table>
 <tr><th>Subtotal</th><td>{{euros .SubtotalCents}}</td></tr>
 <tr><th>Tax ({{.TaxRate}}%)</th><td>{{euros .TaxCents}}</td></tr>
 <tr><th>Total</th><td>{{euros .TotalCents}}</td></tr>
</table>
</body></html>`
