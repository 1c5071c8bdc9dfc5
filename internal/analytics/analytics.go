// Package analytics computes dashboard aggregates over invoice collections:
// revenue, averages, top customers, monthly buckets, growth, and recent
// activity.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"invodex/internal/domain"
)

const (
	topCustomerLimit    = 5
	monthlyBucketLimit  = 12
	recentActivityLimit = 10
)

// CustomerRevenue aggregates one customer's invoices.
type CustomerRevenue struct {
	CustomerName string  `json:"customer_name"`
	TotalAmount  float64 `json:"total_amount"`
	InvoiceCount int     `json:"invoice_count"`
}

// MonthBucket is one month's revenue, keyed "YYYY-MM".
type MonthBucket struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

// ActivityEntry is a one-line description of a recent invoice.
type ActivityEntry struct {
	InvoiceID   string  `json:"invoice_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	When        string  `json:"when"`
}

// Summary is the analytics dashboard payload.
type Summary struct {
	TotalRevenue   float64           `json:"total_revenue"`
	InvoiceCount   int               `json:"invoice_count"`
	AverageValue   float64           `json:"average_value"`
	TopCustomers   []CustomerRevenue `json:"top_customers"`
	MonthlyRevenue []MonthBucket     `json:"monthly_revenue"`
	GrowthRate     float64           `json:"growth_rate"`
	RecentActivity []ActivityEntry   `json:"recent_activity"`
}

// Summarize computes the full analytics summary. Totals read the canonical
// total_amount field; legacy alias payloads are normalized before they reach
// this package. Invoices without a parseable date are excluded from monthly
// buckets but still count toward revenue.
func Summarize(invoices []domain.Invoice) Summary {
	s := Summary{InvoiceCount: len(invoices)}

	for _, inv := range invoices {
		s.TotalRevenue += inv.TotalAmount
	}
	if s.InvoiceCount > 0 {
		s.AverageValue = s.TotalRevenue / float64(s.InvoiceCount)
	}

	s.TopCustomers = topCustomers(invoices)
	s.MonthlyRevenue = monthlyRevenue(invoices)
	s.GrowthRate = growthRate(s.MonthlyRevenue)
	s.RecentActivity = recentActivity(invoices)

	return s
}

func topCustomers(invoices []domain.Invoice) []CustomerRevenue {
	byName := make(map[string]*CustomerRevenue)
	for _, inv := range invoices {
		if inv.CustomerName == "" {
			continue
		}
		c, ok := byName[inv.CustomerName]
		if !ok {
			c = &CustomerRevenue{CustomerName: inv.CustomerName}
			byName[inv.CustomerName] = c
		}
		c.TotalAmount += inv.TotalAmount
		c.InvoiceCount++
	}

	out := make([]CustomerRevenue, 0, len(byName))
	for _, c := range byName {
		out = append(out, *c)
	}
	// Amount descending, name ascending on ties for deterministic output.
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].CustomerName < out[j].CustomerName
	})
	if len(out) > topCustomerLimit {
		out = out[:topCustomerLimit]
	}
	return out
}

func monthlyRevenue(invoices []domain.Invoice) []MonthBucket {
	byMonth := make(map[string]*MonthBucket)
	for _, inv := range invoices {
		t, ok := domain.ParseInvoiceDate(inv.InvoiceDate)
		if !ok {
			continue
		}
		key := t.Format("2006-01")
		b, ok := byMonth[key]
		if !ok {
			b = &MonthBucket{Month: key}
			byMonth[key] = b
		}
		b.Revenue += inv.TotalAmount
		b.Count++
	}

	out := make([]MonthBucket, 0, len(byMonth))
	for _, b := range byMonth {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > monthlyBucketLimit {
		out = out[len(out)-monthlyBucketLimit:]
	}
	return out
}

// growthRate is the month-over-month change between the last two buckets as a
// percentage. Fewer than two buckets, or a zero previous month, yields 0.
func growthRate(buckets []MonthBucket) float64 {
	if len(buckets) < 2 {
		return 0
	}
	prev := buckets[len(buckets)-2].Revenue
	last := buckets[len(buckets)-1].Revenue
	if prev == 0 {
		return 0
	}
	return (last - prev) / prev * 100
}

func recentActivity(invoices []domain.Invoice) []ActivityEntry {
	sorted := make([]domain.Invoice, len(invoices))
	copy(sorted, invoices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return activityTime(&sorted[i]).After(activityTime(&sorted[j]))
	})
	if len(sorted) > recentActivityLimit {
		sorted = sorted[:recentActivityLimit]
	}

	out := make([]ActivityEntry, 0, len(sorted))
	for _, inv := range sorted {
		customer := inv.CustomerName
		if customer == "" {
			customer = "unknown customer"
		}
		out = append(out, ActivityEntry{
			InvoiceID:   inv.ID,
			Description: fmt.Sprintf("Invoice %s for %s ($%.2f)", inv.InvoiceNumber, customer, inv.TotalAmount),
			Amount:      inv.TotalAmount,
			When:        activityTime(&inv).Format("2006-01-02"),
		})
	}
	return out
}

// activityTime prefers the record's creation time and falls back to the
// invoice date for records imported without one.
func activityTime(inv *domain.Invoice) time.Time {
	if !inv.CreatedAt.IsZero() {
		return inv.CreatedAt
	}
	if t, ok := domain.ParseInvoiceDate(inv.InvoiceDate); ok {
		return t
	}
	return time.Time{}
}
