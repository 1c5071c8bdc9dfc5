// Package editor implements the derived-totals engine behind invoice editing.
// An Editor holds a deep working copy of one invoice; numeric line-item edits
// and tax-rate changes re-derive line totals, subtotal, tax, and grand total.
// Manual overrides of derived fields are permitted and are not checked
// against the arithmetic.
package editor

import (
	"fmt"

	"invodex/internal/domain"
)

// Editor is the mutable working copy of an invoice under edit. It shares no
// state with the invoice it was created from.
type Editor struct {
	inv domain.Invoice
}

// New creates an editor over a deep copy of inv.
func New(inv domain.Invoice) *Editor {
	return &Editor{inv: inv.Clone()}
}

// Invoice returns a snapshot copy of the working state.
func (e *Editor) Invoice() domain.Invoice {
	return e.inv.Clone()
}

// ItemCount returns the number of line items in the working copy.
func (e *Editor) ItemCount() int {
	return len(e.inv.Items)
}

// SetItemQuantity sets item i's quantity and re-derives its total from the
// new quantity and the current unit price, then the invoice totals.
func (e *Editor) SetItemQuantity(i, qty int) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	if qty < 0 {
		return fmt.Errorf("editor.SetItemQuantity: quantity %d is negative: %w", qty, domain.ErrInvalidInput)
	}
	it := &e.inv.Items[i]
	it.Quantity = qty
	it.Total = ItemTotal(*it)
	RecalcInvoiceTotals(&e.inv)
	return nil
}

// SetItemUnitPrice sets item i's unit price and re-derives its total from the
// new price and the current quantity, then the invoice totals.
func (e *Editor) SetItemUnitPrice(i int, price float64) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	if price < 0 {
		return fmt.Errorf("editor.SetItemUnitPrice: price %v is negative: %w", price, domain.ErrInvalidInput)
	}
	it := &e.inv.Items[i]
	it.UnitPrice = price
	it.Total = ItemTotal(*it)
	RecalcInvoiceTotals(&e.inv)
	return nil
}

// SetItemNumber sets item i's catalog number. Text edits do not re-derive
// totals.
func (e *Editor) SetItemNumber(i int, number string) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	e.inv.Items[i].ItemNumber = number
	return nil
}

// SetItemDescription sets item i's description. Text edits do not re-derive
// totals.
func (e *Editor) SetItemDescription(i int, desc string) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	e.inv.Items[i].Description = desc
	return nil
}

// AddItem appends an empty line item with quantity 1, unit price 0, total 0,
// and re-derives the invoice totals.
func (e *Editor) AddItem() {
	e.inv.Items = append(e.inv.Items, domain.InvoiceItem{Quantity: 1})
	RecalcInvoiceTotals(&e.inv)
}

// RemoveItem deletes item i and re-derives the invoice totals.
func (e *Editor) RemoveItem(i int) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	e.inv.Items = append(e.inv.Items[:i], e.inv.Items[i+1:]...)
	RecalcInvoiceTotals(&e.inv)
	return nil
}

// SetTaxRate sets the tax rate, a fraction in [0,1], and re-derives the
// invoice totals.
func (e *Editor) SetTaxRate(rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("editor.SetTaxRate: rate %v outside [0,1]: %w", rate, domain.ErrInvalidInput)
	}
	e.inv.TaxRate = rate
	RecalcInvoiceTotals(&e.inv)
	return nil
}

// OverrideItemTotal sets item i's total directly, bypassing derivation. The
// override feeds the subtotal on the next recompute.
func (e *Editor) OverrideItemTotal(i int, total float64) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	e.inv.Items[i].Total = total
	RecalcInvoiceTotals(&e.inv)
	return nil
}

// OverrideSubtotal sets the subtotal directly without recomputation.
func (e *Editor) OverrideSubtotal(v float64) {
	e.inv.Subtotal = v
}

// OverrideTaxAmount sets the tax amount directly without recomputation.
func (e *Editor) OverrideTaxAmount(v float64) {
	e.inv.TaxAmount = v
}

// OverrideTotalAmount sets the grand total directly without recomputation.
func (e *Editor) OverrideTotalAmount(v float64) {
	e.inv.TotalAmount = v
}

func (e *Editor) checkIndex(i int) error {
	if i < 0 || i >= len(e.inv.Items) {
		return fmt.Errorf("editor: item index %d out of range [0,%d): %w", i, len(e.inv.Items), domain.ErrInvalidInput)
	}
	return nil
}

// ItemTotal derives a line item's total from its quantity and unit price.
func ItemTotal(it domain.InvoiceItem) float64 {
	return float64(it.Quantity) * it.UnitPrice
}

// RecalcTotals derives subtotal, tax amount, and grand total from the stored
// line totals and a tax rate. Manually overridden line totals feed the
// subtotal as stored.
func RecalcTotals(items []domain.InvoiceItem, taxRate float64) (subtotal, taxAmount, totalAmount float64) {
	for _, it := range items {
		subtotal += it.Total
	}
	taxAmount = subtotal * taxRate
	totalAmount = subtotal + taxAmount
	return subtotal, taxAmount, totalAmount
}

// RecalcInvoiceTotals rewrites inv's subtotal, tax amount, and grand total
// from its line items and tax rate.
func RecalcInvoiceTotals(inv *domain.Invoice) {
	inv.Subtotal, inv.TaxAmount, inv.TotalAmount = RecalcTotals(inv.Items, inv.TaxRate)
}
