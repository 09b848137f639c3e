// Package report aggregates the sales log into monthly summaries and
// exports them for the back office.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alextreichler/tiffin/internal/models"
)

type Summary struct {
	TotalSales   int
	TotalOrders  int
	AverageOrder int
}

// Summarize totals orders. The average is rounded half up and is zero when
// there are no orders.
func Summarize(orders []models.Order) Summary {
	s := Summary{TotalOrders: len(orders)}
	for _, o := range orders {
		s.TotalSales += o.Total
	}
	if s.TotalOrders > 0 {
		s.AverageOrder = roundDiv(s.TotalSales, s.TotalOrders)
	}
	return s
}

// roundDiv divides rounding half away from zero.
func roundDiv(a, b int) int {
	if a < 0 {
		return -roundDiv(-a, b)
	}
	return (2*a + b) / (2 * b)
}

// MonthSource is satisfied by *sales.Log.
type MonthSource interface {
	ByMonth(ctx context.Context, year int, month time.Month) ([]models.Order, error)
}

type Monthly struct {
	Year    int
	Month   time.Month
	Orders  []models.Order // insertion order
	Summary Summary
}

func Build(ctx context.Context, src MonthSource, year int, month time.Month) (*Monthly, error) {
	orders, err := src.ByMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("load %04d-%02d sales: %w", year, int(month), err)
	}
	return &Monthly{
		Year:    year,
		Month:   month,
		Orders:  orders,
		Summary: Summarize(orders),
	}, nil
}

// Key is the month in the admin picker's YYYY-MM form.
func (m *Monthly) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m *Monthly) Filename(ext string) string {
	return "sales-report-" + m.Key() + "." + strings.TrimPrefix(ext, ".")
}

// ParseMonth reads a YYYY-MM value.
func ParseMonth(value string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: expected YYYY-MM", value)
	}
	return t.Year(), t.Month(), nil
}
