package entity

import (
	"sort"

	"github.com/sangkips/trademate-console/pkg/money"
)

// MonthlySummary aggregates the current month's sales
type MonthlySummary struct {
	TotalSales        money.Amount `json:"totalSales"`
	TotalTransactions int          `json:"totalTransactions"`
}

// SalesTrend is one day's sales total
type SalesTrend struct {
	Date       Date         `json:"date"`
	TotalSales money.Amount `json:"totalSales"`
}

// TopProduct is a best seller ranked by units sold
type TopProduct struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	TotalSold int    `json:"totalSold"`
}

// CashierSales is a per-cashier breakdown
type CashierSales struct {
	CashierID    string       `json:"cashierId"`
	Name         string       `json:"name"`
	TotalSales   money.Amount `json:"totalSales"`
	Transactions int          `json:"transactions"`
}

// Dashboard is the backend's analytics payload
type Dashboard struct {
	MonthlySummary MonthlySummary `json:"monthlySummary"`
	SalesTrends    []SalesTrend   `json:"salesTrends"`
	TopProducts    []TopProduct   `json:"topProducts"`
	CashierSales   []CashierSales `json:"cashierSales"`
}

// SalesOn sums the trend entries that fall on day (YYYY-MM-DD).
func (d Dashboard) SalesOn(day string) money.Amount {
	var total money.Amount
	for _, t := range d.SalesTrends {
		if t.Date.Day() == day {
			total += t.TotalSales
		}
	}
	return total
}

// TrendsForMonth returns the trend entries in the month of day (YYYY-MM-DD), oldest first.
func (d Dashboard) TrendsForMonth(day string) []SalesTrend {
	if len(day) < 7 {
		return nil
	}
	month := day[:7]
	var out []SalesTrend
	for _, t := range d.SalesTrends {
		if td := t.Date.Day(); len(td) >= 7 && td[:7] == month {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// RankedProducts returns top products sorted by units sold, highest first.
func (d Dashboard) RankedProducts() []TopProduct {
	out := make([]TopProduct, len(d.TopProducts))
	copy(out, d.TopProducts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSold > out[j].TotalSold
	})
	return out
}
