// Package listing implements search, date-range filtering, and stable
// sorting over invoice collections for list views.
package listing

import (
	"sort"
	"strings"
	"time"

	"invodex/internal/domain"
)

// DateRange selects invoices by invoice date relative to a reference instant.
type DateRange string

const (
	RangeAll   DateRange = "all"
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeYear  DateRange = "year"
)

// SortKey selects the invoice field to sort by.
type SortKey string

const (
	SortByInvoiceDate   SortKey = "invoice_date"
	SortByTotal         SortKey = "total"
	SortByCustomerName  SortKey = "customer_name"
	SortByInvoiceNumber SortKey = "invoice_number"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Params configures one FilterAndSort pass. Zero values mean: no search, all
// dates, sort by invoice date descending, reference instant time.Now().
type Params struct {
	Query     string
	DateRange DateRange
	SortBy    SortKey
	SortOrder SortOrder
	Now       time.Time
}

// Matches reports whether the invoice matches a case-insensitive substring
// search over invoice number, customer name, and PO number. An empty query
// matches everything.
func Matches(inv *domain.Invoice, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(inv.InvoiceNumber), q) ||
		strings.Contains(strings.ToLower(inv.CustomerName), q) ||
		strings.Contains(strings.ToLower(inv.PONumber), q)
}

// FilterAndSort returns a new slice with the search filter, date-range filter,
// and a stable sort applied. The input slice is never mutated; ties keep
// their relative input order.
func FilterAndSort(invoices []domain.Invoice, p Params) []domain.Invoice {
	if p.DateRange == "" {
		p.DateRange = RangeAll
	}
	if p.SortBy == "" {
		p.SortBy = SortByInvoiceDate
	}
	if p.SortOrder == "" {
		p.SortOrder = OrderDesc
	}
	if p.Now.IsZero() {
		p.Now = time.Now()
	}

	out := make([]domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if !Matches(&inv, p.Query) {
			continue
		}
		if !inRange(inv.InvoiceDate, p.DateRange, p.Now) {
			continue
		}
		out = append(out, inv)
	}

	sort.SliceStable(out, func(i, j int) bool {
		less := lessByKey(&out[i], &out[j], p.SortBy)
		if p.SortOrder == OrderDesc {
			return lessByKey(&out[j], &out[i], p.SortBy)
		}
		return less
	})

	return out
}

func inRange(dateStr string, r DateRange, now time.Time) bool {
	if r == RangeAll {
		return true
	}
	t, ok := domain.ParseInvoiceDate(dateStr)
	if !ok {
		return false
	}
	switch r {
	case RangeToday:
		ny, nm, nd := now.Date()
		ty, tm, td := t.Date()
		return ny == ty && nm == tm && nd == td
	case RangeWeek:
		return !t.Before(now.AddDate(0, 0, -7))
	case RangeMonth:
		return !t.Before(now.AddDate(0, -1, 0))
	case RangeYear:
		return !t.Before(now.AddDate(-1, 0, 0))
	default:
		return true
	}
}

func lessByKey(a, b *domain.Invoice, key SortKey) bool {
	switch key {
	case SortByTotal:
		return a.TotalAmount < b.TotalAmount
	case SortByCustomerName:
		return strings.ToLower(a.CustomerName) < strings.ToLower(b.CustomerName)
	case SortByInvoiceNumber:
		return strings.ToLower(a.InvoiceNumber) < strings.ToLower(b.InvoiceNumber)
	default: // SortByInvoiceDate
		at, aok := domain.ParseInvoiceDate(a.InvoiceDate)
		bt, bok := domain.ParseInvoiceDate(b.InvoiceDate)
		if aok != bok {
			// Undated invoices sort before dated ones ascending.
			return !aok
		}
		return at.Before(bt)
	}
}
