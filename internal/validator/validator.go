// Package validator checks extracted invoices for internal consistency.
// Arithmetic drift within the tolerance is accepted silently; larger
// drift on derived fields produces warnings, while a broken grand total
// or missing critical fields mark the extraction invalid.
package validator

import (
	"fmt"
	"math"

	"invodex/internal/domain"
)

const amountTolerance = 0.01

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= amountTolerance
}

func fmtf(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Validate inspects an extracted invoice and reports mismatches between
// stored and recomputed amounts plus any missing critical fields. The
// report never mutates the invoice; callers decide whether to surface
// warnings or reject invalid extractions.
func Validate(inv *domain.Invoice) domain.ValidationReport {
	report := domain.ValidationReport{
		IsValid:     true,
		Warnings:    []string{},
		Errors:      []string{},
		Suggestions: []string{},
	}
	if inv == nil {
		report.IsValid = false
		report.Errors = append(report.Errors, "no invoice data to validate")
		return report
	}

	var calcSubtotal float64
	for _, it := range inv.Items {
		calcSubtotal += it.Total
	}
	if !approxEqual(calcSubtotal, inv.Subtotal) {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("subtotal mismatch: calculated %s, extracted %s", fmtf(calcSubtotal), fmtf(inv.Subtotal)))
	}

	// Tax and total are checked against the stored subtotal, not the
	// recomputed one, so a single upstream error is reported once.
	calcTax := inv.Subtotal * inv.TaxRate
	if !approxEqual(calcTax, inv.TaxAmount) {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("tax calculation mismatch: calculated %s, extracted %s", fmtf(calcTax), fmtf(inv.TaxAmount)))
	}

	calcTotal := inv.Subtotal + inv.TaxAmount
	if !approxEqual(calcTotal, inv.TotalAmount) {
		report.Errors = append(report.Errors,
			fmt.Sprintf("total mismatch: calculated %s, extracted %s", fmtf(calcTotal), fmtf(inv.TotalAmount)))
		report.IsValid = false
	}

	for i, it := range inv.Items {
		calcLine := float64(it.Quantity) * it.UnitPrice
		if !approxEqual(calcLine, it.Total) {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("line %d total mismatch: %d x %s = %s, extracted %s",
					i+1, it.Quantity, fmtf(it.UnitPrice), fmtf(calcLine), fmtf(it.Total)))
		}
	}

	if inv.InvoiceNumber == "" {
		report.Errors = append(report.Errors, "missing invoice number")
		report.IsValid = false
	}
	if inv.CustomerName == "" {
		report.Errors = append(report.Errors, "missing customer name")
		report.IsValid = false
	}
	if len(inv.Items) == 0 {
		report.Errors = append(report.Errors, "no invoice items found")
		report.IsValid = false
	}

	return report
}

// ConfidenceScore estimates extraction quality from field completeness.
// Every successful extraction starts at 0.8 and earns boosts for each
// populated key field, capped at 1.0.
func ConfidenceScore(inv *domain.Invoice) float64 {
	if inv == nil {
		return 0
	}

	const base = 0.8
	var boost float64

	if inv.InvoiceNumber != "" {
		boost += 0.1
	}
	if inv.CustomerName != "" {
		boost += 0.1
	}
	if len(inv.Items) > 0 {
		boost += 0.2
	}
	if inv.BillingAddress.Street != "" && inv.BillingAddress.City != "" {
		boost += 0.1
	}
	if inv.Subtotal > 0 {
		boost += 0.1
	}
	if inv.TotalAmount > 0 {
		boost += 0.1
	}
	if inv.TaxRate >= 0 {
		boost += 0.1
	}
	if inv.InvoiceDate != "" {
		boost += 0.1
	}
	if len(inv.Items) > 0 {
		boost += 0.1
	}
	if allItemsComplete(inv.Items) {
		boost += 0.1
	}

	return math.Min(base+boost, 1.0)
}

func allItemsComplete(items []domain.InvoiceItem) bool {
	for _, it := range items {
		if it.Description == "" || it.Quantity <= 0 {
			return false
		}
	}
	return true
}
