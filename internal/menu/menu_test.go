package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/alextreichler/tiffin/internal/models"
	"github.com/alextreichler/tiffin/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	docs := store.NewMemory()
	return NewService(docs, nil), docs
}

func ptr[T any](v T) *T { return &v }

func TestInitializeSeedsDefaultsOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 8 {
		t.Fatalf("seeded %d items, want 8", len(items))
	}
	for i, it := range items {
		if it.ID != i+1 {
			t.Fatalf("items[%d].ID = %d, want %d", i, it.ID, i+1)
		}
	}
	if items[1].Name != "Poori" || items[1].Description != "1 set = 3 poori" {
		t.Fatalf("items[1] = %+v", items[1])
	}

	if _, err := svc.Update(ctx, 6, models.MenuItemPatch{Price: ptr(20)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	tea, err := svc.Get(ctx, 6)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tea.Price != 20 {
		t.Fatalf("initialize overwrote stored menu: tea price = %d", tea.Price)
	}
}

func TestInitializeKeepsEmptiedMenu(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for id := 1; id <= 8; id++ {
		if err := svc.Delete(ctx, id); err != nil {
			t.Fatalf("delete %d: %v", id, err)
		}
	}
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	items, _ := svc.List(ctx)
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
}

func TestAddAllocatesIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tea, err := svc.Add(ctx, models.MenuItem{Name: "Tea", Price: 15})
	if err != nil {
		t.Fatalf("add tea: %v", err)
	}
	if tea.ID != 1 {
		t.Fatalf("tea id = %d, want 1", tea.ID)
	}
	coffee, err := svc.Add(ctx, models.MenuItem{Name: "Coffee", Price: 15})
	if err != nil {
		t.Fatalf("add coffee: %v", err)
	}
	if coffee.ID != 2 {
		t.Fatalf("coffee id = %d, want 2", coffee.ID)
	}

	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	dosa, err := svc.Add(ctx, models.MenuItem{Name: "Dosa", Price: 45})
	if err != nil {
		t.Fatalf("add dosa: %v", err)
	}
	if dosa.ID != 3 {
		t.Fatalf("dosa id = %d, want 3", dosa.ID)
	}

	// Deleting the newest item must not free its id either.
	if err := svc.Delete(ctx, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}
	vada, err := svc.Add(ctx, models.MenuItem{Name: "Vada", Price: 10})
	if err != nil {
		t.Fatalf("add vada: %v", err)
	}
	if vada.ID != 4 {
		t.Fatalf("vada id = %d, want 4", vada.ID)
	}

	items, _ := svc.List(ctx)
	seen := map[int]bool{}
	for _, it := range items {
		if seen[it.ID] {
			t.Fatalf("duplicate id %d in %+v", it.ID, items)
		}
		seen[it.ID] = true
	}
}

func TestAddAfterSeedContinuesFromDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	item, err := svc.Add(ctx, models.MenuItem{Name: "Upma", Price: 25})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.ID != 9 {
		t.Fatalf("id = %d, want 9", item.ID)
	}
}

func TestAddRejectsInvalidItems(t *testing.T) {
	ctx := context.Background()
	svc, docs := newTestService(t)

	tests := []struct {
		name string
		item models.MenuItem
	}{
		{"missing name", models.MenuItem{Price: 10}},
		{"blank name", models.MenuItem{Name: "   ", Price: 10}},
		{"zero price", models.MenuItem{Name: "Tea"}},
		{"negative price", models.MenuItem{Name: "Tea", Price: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, tt.item); !errors.Is(err, ErrInvalidItem) {
				t.Fatalf("add = %v, want %v", err, ErrInvalidItem)
			}
		})
	}
	if _, ok := docs.Raw(menuKey); ok {
		t.Fatal("invalid adds must not persist")
	}
}

func TestGetMissing(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Get(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get = %v, want %v", err, ErrNotFound)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	item, err := svc.Add(ctx, models.MenuItem{Name: "Dosa", Price: 45, Description: "plain"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := svc.Update(ctx, item.ID, models.MenuItemPatch{Price: ptr(50)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := models.MenuItem{ID: item.ID, Name: "Dosa", Price: 50, Description: "plain"}
	if got != want {
		t.Fatalf("update = %+v, want %+v", got, want)
	}

	if _, err := svc.Update(ctx, item.ID, models.MenuItemPatch{Price: ptr(0)}); !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("update zero price = %v, want %v", err, ErrInvalidItem)
	}
	if _, err := svc.Update(ctx, 99, models.MenuItemPatch{Name: ptr("Ghost")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing = %v, want %v", err, ErrNotFound)
	}

	stored, _ := svc.Get(ctx, item.ID)
	if stored != want {
		t.Fatalf("stored = %+v, want %+v", stored, want)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := svc.Delete(ctx, 4); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, 4); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	items, _ := svc.List(ctx)
	if len(items) != 7 {
		t.Fatalf("items = %d, want 7", len(items))
	}
	if _, err := svc.Get(ctx, 4); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get deleted = %v", err)
	}
}

func TestEmoji(t *testing.T) {
	tests := map[string]string{
		"Dosa":    "🥙",
		" coffee": "☕",
		"Biryani": "🍽️",
	}
	for name, want := range tests {
		if got := Emoji(name); got != want {
			t.Errorf("Emoji(%q) = %q, want %q", name, got, want)
		}
	}
}
