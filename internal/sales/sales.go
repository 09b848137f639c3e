// Package sales keeps the append-only history of confirmed orders.
package sales

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alextreichler/tiffin/internal/models"
	"github.com/alextreichler/tiffin/internal/store"
)

const salesKey = "sales"

// Log is the persisted sales history. Month queries are evaluated in loc,
// the restaurant's wall-clock time zone.
type Log struct {
	docs store.Documents
	loc  *time.Location
	mu   sync.Mutex
}

func NewLog(docs store.Documents, loc *time.Location) *Log {
	if loc == nil {
		loc = time.UTC
	}
	return &Log{docs: docs, loc: loc}
}

func (l *Log) Location() *time.Location { return l.loc }

// Append rewrites the whole log with order added at the end.
func (l *Log) Append(ctx context.Context, order models.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.load(ctx)
	if err != nil {
		return err
	}
	orders = append(orders, order)
	if err := l.docs.Save(ctx, salesKey, orders); err != nil {
		return fmt.Errorf("append order %d: %w", order.ID, err)
	}
	return nil
}

func (l *Log) All(ctx context.Context) ([]models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// ByMonth returns the orders placed in the given calendar month, in the
// order they were appended.
func (l *Log) ByMonth(ctx context.Context, year int, month time.Month) ([]models.Order, error) {
	orders, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	return InMonth(orders, year, month, l.loc), nil
}

// InMonth filters orders to those whose date falls in year/month when viewed in loc.
func InMonth(orders []models.Order, year int, month time.Month, loc *time.Location) []models.Order {
	out := []models.Order{}
	for _, o := range orders {
		d := o.Date.In(loc)
		if d.Year() == year && d.Month() == month {
			out = append(out, o)
		}
	}
	return out
}

// NewestFirst returns a copy of orders sorted by date, most recent first.
func NewestFirst(orders []models.Order) []models.Order {
	out := make([]models.Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func (l *Log) load(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if _, err := l.docs.Load(ctx, salesKey, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
