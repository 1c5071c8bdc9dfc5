package analytics_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invodex/internal/analytics"
	"invodex/internal/domain"
)

func TestSummarize_Empty(t *testing.T) {
	s := analytics.Summarize(nil)

	assert.Zero(t, s.TotalRevenue)
	assert.Zero(t, s.InvoiceCount)
	assert.Zero(t, s.AverageValue, "average must be 0 when there are no invoices, not NaN")
	assert.Empty(t, s.TopCustomers)
	assert.Empty(t, s.MonthlyRevenue)
	assert.Zero(t, s.GrowthRate)
	assert.Empty(t, s.RecentActivity)
}

func TestSummarize_RevenueAndAverage(t *testing.T) {
	invoices := []domain.Invoice{
		{TotalAmount: 100},
		{TotalAmount: 250},
		{TotalAmount: 50},
	}

	s := analytics.Summarize(invoices)

	assert.InDelta(t, 400.0, s.TotalRevenue, 1e-9)
	assert.Equal(t, 3, s.InvoiceCount)
	assert.InDelta(t, 400.0/3.0, s.AverageValue, 1e-9)
}

func TestSummarize_LegacyAliasPayloadsCountTowardRevenue(t *testing.T) {
	// Older API payloads carry "total" instead of "total_amount"; ingestion
	// normalization must land both in the canonical field that analytics reads.
	payloads := []string{
		`{"customer_name":"Acme","total_amount":100.0}`,
		`{"customer_name":"Acme","total":50.0}`,
	}

	var invoices []domain.Invoice
	for _, p := range payloads {
		var inv domain.Invoice
		require.NoError(t, json.Unmarshal([]byte(p), &inv))
		invoices = append(invoices, inv)
	}

	s := analytics.Summarize(invoices)

	assert.InDelta(t, 150.0, s.TotalRevenue, 1e-9)
}

func TestSummarize_TopCustomers(t *testing.T) {
	var invoices []domain.Invoice
	// Seven customers with distinct totals; only the top five survive.
	for i := 1; i <= 7; i++ {
		invoices = append(invoices, domain.Invoice{
			CustomerName: fmt.Sprintf("Customer %d", i),
			TotalAmount:  float64(i * 100),
		})
	}
	// Second invoice for the biggest customer.
	invoices = append(invoices, domain.Invoice{CustomerName: "Customer 7", TotalAmount: 300})
	// Nameless invoices are excluded from the grouping.
	invoices = append(invoices, domain.Invoice{TotalAmount: 9999})

	s := analytics.Summarize(invoices)

	require.Len(t, s.TopCustomers, 5)
	assert.Equal(t, "Customer 7", s.TopCustomers[0].CustomerName)
	assert.InDelta(t, 1000.0, s.TopCustomers[0].TotalAmount, 1e-9)
	assert.Equal(t, 2, s.TopCustomers[0].InvoiceCount)
	assert.Equal(t, "Customer 6", s.TopCustomers[1].CustomerName)
	assert.Equal(t, "Customer 3", s.TopCustomers[4].CustomerName)
}

func TestSummarize_TopCustomers_TieBrokenByName(t *testing.T) {
	invoices := []domain.Invoice{
		{CustomerName: "Zeta", TotalAmount: 100},
		{CustomerName: "Alpha", TotalAmount: 100},
	}

	s := analytics.Summarize(invoices)

	require.Len(t, s.TopCustomers, 2)
	assert.Equal(t, "Alpha", s.TopCustomers[0].CustomerName)
	assert.Equal(t, "Zeta", s.TopCustomers[1].CustomerName)
}

func TestSummarize_MonthlyBucketsAscendingLastTwelve(t *testing.T) {
	var invoices []domain.Invoice
	// Fourteen months of history; expect only the last twelve, ascending.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		d := start.AddDate(0, i, 0)
		invoices = append(invoices, domain.Invoice{
			InvoiceDate: d.Format("2006-01-02"),
			TotalAmount: 100,
		})
	}
	invoices = append(invoices, domain.Invoice{InvoiceDate: "not a date", TotalAmount: 5})

	s := analytics.Summarize(invoices)

	require.Len(t, s.MonthlyRevenue, 12)
	assert.Equal(t, "2024-03", s.MonthlyRevenue[0].Month)
	assert.Equal(t, "2025-02", s.MonthlyRevenue[11].Month)
	for i := 1; i < len(s.MonthlyRevenue); i++ {
		assert.Less(t, s.MonthlyRevenue[i-1].Month, s.MonthlyRevenue[i].Month)
	}
}

func TestSummarize_GrowthRate(t *testing.T) {
	tests := []struct {
		name   string
		totals map[string]float64 // month -> revenue
		want   float64
	}{
		{"two months growth", map[string]float64{"2025-01": 100, "2025-02": 150}, 50},
		{"two months decline", map[string]float64{"2025-01": 200, "2025-02": 150}, -25},
		{"single month", map[string]float64{"2025-01": 100}, 0},
		{"previous month zero", map[string]float64{"2025-01": 0, "2025-02": 150}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var invoices []domain.Invoice
			for month, total := range tt.totals {
				invoices = append(invoices, domain.Invoice{
					InvoiceDate: month + "-15",
					TotalAmount: total,
				})
			}

			s := analytics.Summarize(invoices)

			assert.InDelta(t, tt.want, s.GrowthRate, 1e-9)
		})
	}
}

func TestSummarize_RecentActivity(t *testing.T) {
	var invoices []domain.Invoice
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		invoices = append(invoices, domain.Invoice{
			ID:            fmt.Sprintf("INV_%02d", i),
			InvoiceNumber: fmt.Sprintf("INV-%02d", i),
			CustomerName:  "Acme Corp",
			TotalAmount:   27.0,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		})
	}

	s := analytics.Summarize(invoices)

	require.Len(t, s.RecentActivity, 10)
	assert.Equal(t, "INV_11", s.RecentActivity[0].InvoiceID)
	assert.Equal(t, "INV_02", s.RecentActivity[9].InvoiceID)
	assert.Equal(t, "Invoice INV-11 for Acme Corp ($27.00)", s.RecentActivity[0].Description)
}

func TestSummarize_RecentActivityFallsBackToInvoiceDate(t *testing.T) {
	invoices := []domain.Invoice{
		{ID: "a", InvoiceNumber: "A", InvoiceDate: "2025-01-01"},
		{ID: "b", InvoiceNumber: "B", InvoiceDate: "2025-03-01"},
	}

	s := analytics.Summarize(invoices)

	require.Len(t, s.RecentActivity, 2)
	assert.Equal(t, "b", s.RecentActivity[0].InvoiceID)
	assert.Equal(t, "2025-03-01", s.RecentActivity[0].When)
}
