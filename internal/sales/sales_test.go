package sales

import (
	"context"
	"testing"
	"time"

	"github.com/alextreichler/tiffin/internal/models"
	"github.com/alextreichler/tiffin/internal/store"
)

func order(id int64, date time.Time, total int) models.Order {
	return models.Order{
		ID:    id,
		Date:  date,
		Items: []models.CartLine{{ID: 1, Name: "Idly", Price: total, Quantity: 1}},
		Total: total,
	}
}

func TestAppendKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	log := NewLog(store.NewMemory(), time.UTC)

	dates := []time.Time{
		time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.February, 3, 9, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		if err := log.Append(ctx, order(int64(i+1), d, 10)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := log.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i, o := range all {
		if o.ID != int64(i+1) {
			t.Fatalf("all[%d].ID = %d, want %d", i, o.ID, i+1)
		}
		if !o.Date.Equal(dates[i]) {
			t.Fatalf("all[%d].Date = %v, want %v", i, o.Date, dates[i])
		}
	}
}

func TestByMonthSelectsExactlyTheMonth(t *testing.T) {
	ctx := context.Background()
	log := NewLog(store.NewMemory(), time.UTC)

	input := []models.Order{
		order(1, time.Date(2026, time.October, 31, 23, 59, 0, 0, time.UTC), 10),
		order(2, time.Date(2026, time.September, 30, 23, 59, 0, 0, time.UTC), 20),
		order(3, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), 30),
		order(4, time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC), 40),
		order(5, time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC), 50),
		order(6, time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC), 60),
	}
	for _, o := range input {
		if err := log.Append(ctx, o); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := log.ByMonth(ctx, 2026, time.October)
	if err != nil {
		t.Fatalf("by month: %v", err)
	}
	wantIDs := []int64{1, 3, 6}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d orders, want %d: %+v", len(got), len(wantIDs), got)
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("got[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}

	empty, err := log.ByMonth(ctx, 2027, time.January)
	if err != nil {
		t.Fatalf("by month: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no orders, got %d", len(empty))
	}
}

func TestByMonthUsesLocation(t *testing.T) {
	ctx := context.Background()
	ist := time.FixedZone("IST", 5*3600+1800)
	log := NewLog(store.NewMemory(), ist)

	// 19:00 UTC on 31 Oct is 00:30 on 1 Nov in India.
	late := order(1, time.Date(2026, time.October, 31, 19, 0, 0, 0, time.UTC), 10)
	if err := log.Append(ctx, late); err != nil {
		t.Fatalf("append: %v", err)
	}

	oct, _ := log.ByMonth(ctx, 2026, time.October)
	nov, _ := log.ByMonth(ctx, 2026, time.November)
	if len(oct) != 0 || len(nov) != 1 {
		t.Fatalf("october=%d november=%d, want 0 and 1", len(oct), len(nov))
	}
}

func TestNewestFirst(t *testing.T) {
	base := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		order(1, base, 1),
		order(2, base.Add(2*time.Hour), 2),
		order(3, base.Add(time.Hour), 3),
	}
	got := NewestFirst(orders)
	if got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 1 {
		t.Fatalf("order = %d,%d,%d", got[0].ID, got[1].ID, got[2].ID)
	}
	if orders[0].ID != 1 {
		t.Fatal("NewestFirst must not reorder its input")
	}
}
