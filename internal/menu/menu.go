// Package menu owns the catalog of orderable items.
package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alextreichler/tiffin/internal/models"
	"github.com/alextreichler/tiffin/internal/store"
)

const (
	menuKey = "menu"
	seqKey  = "menu_seq"
)

var (
	ErrNotFound    = errors.New("menu item not found")
	ErrInvalidItem = errors.New("invalid menu item")
)

var defaultMenu = []models.MenuItem{
	{ID: 1, Name: "Idly", Price: 10, Image: "https://source.unsplash.com/200x200/?idli"},
	{ID: 2, Name: "Poori", Price: 30, Image: "https://source.unsplash.com/200x200/?poori", Description: "1 set = 3 poori"},
	{ID: 3, Name: "Vada", Price: 10, Image: "https://source.unsplash.com/200x200/?vada"},
	{ID: 4, Name: "Dosa", Price: 45, Image: "https://source.unsplash.com/200x200/?dosa"},
	{ID: 5, Name: "Balpan", Price: 15, Image: "https://source.unsplash.com/200x200/?balpan,indian-food"},
	{ID: 6, Name: "Tea", Price: 15, Image: "https://source.unsplash.com/200x200/?tea"},
	{ID: 7, Name: "Coffee", Price: 15, Image: "https://source.unsplash.com/200x200/?coffee"},
	{ID: 8, Name: "Puttu", Price: 20, Image: "https://source.unsplash.com/200x200/?puttu"},
}

// Defaults returns a copy of the seed catalog.
func Defaults() []models.MenuItem {
	out := make([]models.MenuItem, len(defaultMenu))
	copy(out, defaultMenu)
	return out
}

type Service struct {
	docs store.Documents
	log  *slog.Logger
	mu   sync.Mutex
}

func NewService(docs store.Documents, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, log: logger}
}

// Initialize seeds the default catalog when none has been stored yet. A
// stored catalog is never overwritten, even one the admin emptied.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.MenuItem
	found, err := s.docs.Load(ctx, menuKey, &items)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	seed := Defaults()
	if err := s.docs.Save(ctx, menuKey, seed); err != nil {
		return err
	}
	if err := s.docs.Save(ctx, seqKey, maxID(seed)); err != nil {
		return err
	}
	s.log.Info("Seeded default menu", "items", len(seed))
	return nil
}

func (s *Service) List(ctx context.Context) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return models.MenuItem{}, err
	}
	if i := indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	return models.MenuItem{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
}

// Add stores item under a freshly allocated id. Ids come from a persisted
// counter and are never handed out twice, even after the highest item is
// deleted.
func (s *Service) Add(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	item = normalize(item)
	if err := Validate(item); err != nil {
		return models.MenuItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return models.MenuItem{}, err
	}
	var seq int
	if _, err := s.docs.Load(ctx, seqKey, &seq); err != nil {
		return models.MenuItem{}, err
	}
	if m := maxID(items); m > seq {
		seq = m
	}

	item.ID = seq + 1
	if err := s.docs.Save(ctx, seqKey, item.ID); err != nil {
		return models.MenuItem{}, err
	}
	items = append(items, item)
	if err := s.docs.Save(ctx, menuKey, items); err != nil {
		return models.MenuItem{}, err
	}
	s.log.Info("Menu item added", "id", item.ID, "name", item.Name)
	return item, nil
}

// Update merges patch onto the item with the given id. The id itself never changes.
func (s *Service) Update(ctx context.Context, id int, patch models.MenuItemPatch) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return models.MenuItem{}, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return models.MenuItem{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}

	updated := items[i]
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	if patch.Image != nil {
		updated.Image = *patch.Image
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	updated = normalize(updated)
	updated.ID = id
	if err := Validate(updated); err != nil {
		return models.MenuItem{}, err
	}

	items[i] = updated
	if err := s.docs.Save(ctx, menuKey, items); err != nil {
		return models.MenuItem{}, err
	}
	s.log.Info("Menu item updated", "id", id)
	return updated, nil
}

// Delete removes the item if present. Deleting an unknown id is not an error.
func (s *Service) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if err := s.docs.Save(ctx, menuKey, kept); err != nil {
		return err
	}
	s.log.Info("Menu item deleted", "id", id)
	return nil
}

// Validate applies the presence checks the admin form enforces.
func Validate(item models.MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if item.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidItem)
	}
	return nil
}

func (s *Service) load(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if _, err := s.docs.Load(ctx, menuKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func normalize(item models.MenuItem) models.MenuItem {
	item.Name = strings.TrimSpace(item.Name)
	item.Image = strings.TrimSpace(item.Image)
	item.Description = strings.TrimSpace(item.Description)
	return item
}

func indexOf(items []models.MenuItem, id int) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func maxID(items []models.MenuItem) int {
	m := 0
	for _, it := range items {
		if it.ID > m {
			m = it.ID
		}
	}
	return m
}
