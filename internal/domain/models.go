package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Address represents a postal address on an invoice.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Phone   string `json:"phone"`
}

// InvoiceItem represents a single line item on an invoice. Total is derived
// from Quantity and UnitPrice by the editor; the type itself does not enforce
// the relationship.
type InvoiceItem struct {
	ID          string  `json:"id"`
	ItemNumber  string  `json:"item_number"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Invoice is the structured record produced by extraction and stored in the
// invoice store. TaxRate is a fraction in [0,1]. InvoiceDate and ShipDate are
// ISO dates ("2006-01-02") as extracted; ParseInvoiceDate handles the known
// variants.
type Invoice struct {
	ID                   string        `json:"id"`
	InvoiceNumber        string        `json:"invoice_number"`
	InvoiceDate          string        `json:"invoice_date"`
	CustomerID           string        `json:"customer_id"`
	CustomerName         string        `json:"customer_name"`
	BillingAddress       Address       `json:"billing_address"`
	ShippingAddress      Address       `json:"shipping_address"`
	Items                []InvoiceItem `json:"items"`
	Subtotal             float64       `json:"subtotal"`
	TaxRate              float64       `json:"tax_rate"`
	TaxAmount            float64       `json:"tax_amount"`
	TotalAmount          float64       `json:"total_amount"`
	Salesperson          string        `json:"salesperson"`
	PONumber             string        `json:"po_number"`
	Terms                string        `json:"terms"`
	ShipDate             string        `json:"ship_date"`
	ShipVia              string        `json:"ship_via"`
	FOB                  string        `json:"fob"`
	ExtractionConfidence float64       `json:"extraction_confidence"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            *time.Time    `json:"updated_at,omitempty"`
}

// UnmarshalJSON normalizes legacy payloads at the ingestion boundary. Older
// producers emitted "tax" and "total" where current ones emit "tax_amount"
// and "total_amount"; the canonical key wins when both are present.
func (inv *Invoice) UnmarshalJSON(data []byte) error {
	type alias Invoice
	aux := struct {
		*alias
		TaxAmount   *float64 `json:"tax_amount"`
		TotalAmount *float64 `json:"total_amount"`
		LegacyTax   *float64 `json:"tax"`
		LegacyTotal *float64 `json:"total"`
	}{alias: (*alias)(inv)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.TaxAmount != nil:
		inv.TaxAmount = *aux.TaxAmount
	case aux.LegacyTax != nil:
		inv.TaxAmount = *aux.LegacyTax
	}
	switch {
	case aux.TotalAmount != nil:
		inv.TotalAmount = *aux.TotalAmount
	case aux.LegacyTotal != nil:
		inv.TotalAmount = *aux.LegacyTotal
	}
	return nil
}

// Clone returns a deep copy. Edits to the copy never alias the original.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = make([]InvoiceItem, len(inv.Items))
		copy(out.Items, inv.Items)
	}
	if inv.UpdatedAt != nil {
		t := *inv.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// FillDerived fills missing derived amounts in place after extraction. A zero
// value is treated as absent; filling a genuinely zero invoice recomputes the
// same zero.
func (inv *Invoice) FillDerived() {
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.Total == 0 {
			it.Total = float64(it.Quantity) * it.UnitPrice
		}
	}
	if inv.Subtotal == 0 {
		for _, it := range inv.Items {
			inv.Subtotal += it.Total
		}
	}
	if inv.TaxAmount == 0 && inv.TaxRate > 0 {
		inv.TaxAmount = inv.Subtotal * inv.TaxRate
	}
	if inv.TotalAmount == 0 {
		inv.TotalAmount = inv.Subtotal + inv.TaxAmount
	}
}

// ValidationReport summarizes consistency checks run against an extracted
// invoice. Errors make the extraction invalid; warnings and suggestions do not.
type ValidationReport struct {
	IsValid     bool     `json:"is_valid"`
	Warnings    []string `json:"warnings"`
	Errors      []string `json:"errors"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ExtractionResult is the outcome of extracting one uploaded document.
type ExtractionResult struct {
	ExtractionID    string            `json:"extraction_id"`
	InvoiceID       string            `json:"invoice_id"`
	Invoice         *Invoice          `json:"invoice_data"`
	ConfidenceScore float64           `json:"confidence_score"`
	ProcessingTime  float64           `json:"processing_time"`
	Validation      *ValidationReport `json:"validation_results,omitempty"`
}

// UploadedDocument describes a document held in object storage awaiting
// extraction.
type UploadedDocument struct {
	DocumentID string         `json:"document_id"`
	Filename   string         `json:"filename"`
	FileSize   int64          `json:"file_size"`
	UploadedAt time.Time      `json:"uploaded_at"`
	Status     DocumentStatus `json:"status"`
}

// Statistics summarizes the invoice store.
type Statistics struct {
	TotalInvoices int        `json:"total_invoices"`
	TotalItems    int        `json:"total_items"`
	TotalAmount   float64    `json:"total_amount"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
}

// NewInvoiceID builds an invoice id from a timestamp, unique to the
// microsecond within a single store.
func NewInvoiceID(t time.Time) string {
	return fmt.Sprintf("INV_%s_%06d", t.Format("20060102_150405"), t.Nanosecond()/1000)
}

// invoiceDateLayouts are the date formats extraction output has been observed
// to carry despite the prompt asking for ISO dates.
var invoiceDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseInvoiceDate parses an invoice date string, reporting whether any known
// layout matched.
func ParseInvoiceDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
