package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invodex/internal/domain"
	"invodex/internal/editor"
)

const delta = 1e-9

func threeItemInvoice() domain.Invoice {
	return domain.Invoice{
		TaxRate: 0.08,
		Items: []domain.InvoiceItem{
			{Description: "alpha", Quantity: 2, UnitPrice: 10.00, Total: 20.00},
			{Description: "beta", Quantity: 1, UnitPrice: 5.00, Total: 5.00},
			{Description: "gamma", Quantity: 3, UnitPrice: 0.00, Total: 0.00},
		},
	}
}

func TestRecalcTotals(t *testing.T) {
	inv := threeItemInvoice()

	subtotal, tax, total := editor.RecalcTotals(inv.Items, inv.TaxRate)

	assert.InDelta(t, 25.00, subtotal, delta)
	assert.InDelta(t, 2.00, tax, delta)
	assert.InDelta(t, 27.00, total, delta)
}

func TestEditor_QuantityEditRederivesLineAndInvoiceTotals(t *testing.T) {
	e := editor.New(threeItemInvoice())

	require.NoError(t, e.SetItemQuantity(0, 4))

	inv := e.Invoice()
	assert.InDelta(t, 40.00, inv.Items[0].Total, delta)
	assert.InDelta(t, 45.00, inv.Subtotal, delta)
	assert.InDelta(t, 3.60, inv.TaxAmount, delta)
	assert.InDelta(t, 48.60, inv.TotalAmount, delta)
}

func TestEditor_PriceEditUsesPostEditPriceAndPreEditQuantity(t *testing.T) {
	e := editor.New(threeItemInvoice())

	require.NoError(t, e.SetItemUnitPrice(1, 7.50))

	inv := e.Invoice()
	assert.Equal(t, 1, inv.Items[1].Quantity)
	assert.InDelta(t, 7.50, inv.Items[1].Total, delta)
	assert.InDelta(t, 27.50, inv.Subtotal, delta)
}

func TestEditor_AddItemDefaults(t *testing.T) {
	e := editor.New(threeItemInvoice())

	e.AddItem()

	inv := e.Invoice()
	require.Len(t, inv.Items, 4)
	added := inv.Items[3]
	assert.Equal(t, 1, added.Quantity)
	assert.Zero(t, added.UnitPrice)
	assert.Zero(t, added.Total)
	// A zero-total row leaves the invoice totals unchanged.
	assert.InDelta(t, 25.00, inv.Subtotal, delta)
	assert.InDelta(t, 27.00, inv.TotalAmount, delta)
}

func TestEditor_RemoveItemShrinksTotals(t *testing.T) {
	e := editor.New(threeItemInvoice())

	require.NoError(t, e.RemoveItem(0))

	inv := e.Invoice()
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "beta", inv.Items[0].Description)
	assert.InDelta(t, 5.00, inv.Subtotal, delta)
	assert.InDelta(t, 0.40, inv.TaxAmount, delta)
	assert.InDelta(t, 5.40, inv.TotalAmount, delta)
}

func TestEditor_SetTaxRate(t *testing.T) {
	e := editor.New(threeItemInvoice())

	require.NoError(t, e.SetTaxRate(0.10))

	inv := e.Invoice()
	assert.InDelta(t, 2.50, inv.TaxAmount, delta)
	assert.InDelta(t, 27.50, inv.TotalAmount, delta)

	assert.ErrorIs(t, e.SetTaxRate(1.5), domain.ErrInvalidInput)
	assert.ErrorIs(t, e.SetTaxRate(-0.1), domain.ErrInvalidInput)
}

func TestEditor_IndexOutOfRange(t *testing.T) {
	e := editor.New(threeItemInvoice())

	assert.ErrorIs(t, e.SetItemQuantity(3, 1), domain.ErrInvalidInput)
	assert.ErrorIs(t, e.SetItemUnitPrice(-1, 1.0), domain.ErrInvalidInput)
	assert.ErrorIs(t, e.RemoveItem(99), domain.ErrInvalidInput)

	// Failed ops leave the working copy untouched.
	inv := e.Invoice()
	require.Len(t, inv.Items, 3)
	assert.InDelta(t, 25.00, inv.Subtotal, delta)
}

func TestEditor_NegativeValuesRejected(t *testing.T) {
	e := editor.New(threeItemInvoice())

	assert.ErrorIs(t, e.SetItemQuantity(0, -1), domain.ErrInvalidInput)
	assert.ErrorIs(t, e.SetItemUnitPrice(0, -0.01), domain.ErrInvalidInput)
}

func TestEditor_WorkingCopyDoesNotAliasSource(t *testing.T) {
	src := threeItemInvoice()
	e := editor.New(src)

	require.NoError(t, e.SetItemQuantity(0, 99))

	assert.Equal(t, 2, src.Items[0].Quantity)
	assert.InDelta(t, 20.00, src.Items[0].Total, delta)
}

func TestEditor_TextEditsDoNotRecompute(t *testing.T) {
	e := editor.New(threeItemInvoice())
	e.OverrideSubtotal(999)

	require.NoError(t, e.SetItemDescription(0, "renamed"))
	require.NoError(t, e.SetItemNumber(0, "SKU-1"))

	inv := e.Invoice()
	assert.Equal(t, "renamed", inv.Items[0].Description)
	assert.Equal(t, "SKU-1", inv.Items[0].ItemNumber)
	assert.InDelta(t, 999, inv.Subtotal, delta)
}

// Invoice-level overrides are not reconciled with the line items: an
// overridden subtotal survives until the next numeric mutation recomputes it.
func TestEditor_InvoiceLevelOverridesAreNotEnforced(t *testing.T) {
	e := editor.New(threeItemInvoice())

	e.OverrideSubtotal(100.00)
	e.OverrideTaxAmount(8.00)
	e.OverrideTotalAmount(108.00)

	inv := e.Invoice()
	assert.InDelta(t, 100.00, inv.Subtotal, delta)
	assert.InDelta(t, 8.00, inv.TaxAmount, delta)
	assert.InDelta(t, 108.00, inv.TotalAmount, delta)

	// The next numeric mutation re-derives everything from the items again.
	require.NoError(t, e.SetItemQuantity(0, 2))
	inv = e.Invoice()
	assert.InDelta(t, 25.00, inv.Subtotal, delta)
	assert.InDelta(t, 27.00, inv.TotalAmount, delta)
}

func TestEditor_OverriddenItemTotalFeedsSubtotal(t *testing.T) {
	e := editor.New(threeItemInvoice())

	// Override one line's total; recompute folds the stored value in as-is.
	require.NoError(t, e.OverrideItemTotal(2, 10.00))

	inv := e.Invoice()
	assert.InDelta(t, 10.00, inv.Items[2].Total, delta)
	assert.InDelta(t, 35.00, inv.Subtotal, delta)
	assert.InDelta(t, 2.80, inv.TaxAmount, delta)
	assert.InDelta(t, 37.80, inv.TotalAmount, delta)
}

func TestRecalcTotals_FloatingPointEdges(t *testing.T) {
	items := []domain.InvoiceItem{
		{Quantity: 3, UnitPrice: 0.10, Total: 0.30000000000000004},
		{Quantity: 1, UnitPrice: 0.20, Total: 0.20},
	}

	subtotal, tax, total := editor.RecalcTotals(items, 0.08)

	// Money assertions use a tolerance, never exact float equality.
	assert.InDelta(t, 0.50, subtotal, 1e-9)
	assert.InDelta(t, 0.04, tax, 1e-9)
	assert.InDelta(t, 0.54, total, 1e-9)
}
