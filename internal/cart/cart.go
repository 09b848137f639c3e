// Package cart tracks a customer's in-progress order and turns it into a
// sales record on confirmation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alextreichler/tiffin/internal/menu"
	"github.com/alextreichler/tiffin/internal/models"
	"github.com/alextreichler/tiffin/internal/store"
)

var (
	ErrItemNotFound = errors.New("menu item not found")
	ErrLineNotFound = errors.New("item not in cart")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrDeclined     = errors.New("clear not confirmed")
)

// MenuLookup resolves an item's current name and price. A miss is
// reported as menu.ErrNotFound.
type MenuLookup interface {
	Get(ctx context.Context, id int) (models.MenuItem, error)
}

// OrderAppender records a confirmed order.
type OrderAppender interface {
	Append(ctx context.Context, order models.Order) error
}

type Option func(*Service)

// WithClock overrides time.Now, used for order ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for cart events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// OnConfirm registers a callback invoked after an order is recorded.
func OnConfirm(fn func(models.Order)) Option {
	return func(s *Service) { s.onConfirm = append(s.onConfirm, fn) }
}

type Service struct {
	docs  store.Documents
	menu  MenuLookup
	sales OrderAppender

	now       func() time.Time
	log       *slog.Logger
	onConfirm []func(models.Order)

	mu          sync.Mutex
	lastOrderID int64
}

func NewService(docs store.Documents, menu MenuLookup, sales OrderAppender, opts ...Option) *Service {
	s := &Service{
		docs:  docs,
		menu:  menu,
		sales: sales,
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a handle on the cart persisted under id.
func (s *Service) Get(id string) *Cart {
	return &Cart{svc: s, key: "cart:" + id}
}

// Cart is one visitor's cart. Every call reads and rewrites the stored
// document, so handles are cheap and need not be cached.
type Cart struct {
	svc *Service
	key string
}

func (c *Cart) Lines(ctx context.Context) ([]models.CartLine, error) {
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	return c.load(ctx)
}

func (c *Cart) Total(ctx context.Context) (int, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return 0, err
	}
	return models.Total(lines), nil
}

// AddItem adds one unit of the menu item. A new line copies the item's
// name and price as they are right now; later menu edits do not touch it.
func (c *Cart) AddItem(ctx context.Context, itemID int) (models.CartLine, error) {
	item, err := c.svc.menu.Get(ctx, itemID)
	if errors.Is(err, menu.ErrNotFound) {
		return models.CartLine{}, fmt.Errorf("add item %d: %w", itemID, ErrItemNotFound)
	}
	if err != nil {
		return models.CartLine{}, fmt.Errorf("add item %d: %w", itemID, err)
	}

	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()

	lines, err := c.load(ctx)
	if err != nil {
		return models.CartLine{}, err
	}
	i := indexOf(lines, itemID)
	if i >= 0 {
		lines[i].Quantity++
	} else {
		lines = append(lines, models.CartLine{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: 1,
		})
		i = len(lines) - 1
	}
	if err := c.save(ctx, lines); err != nil {
		return models.CartLine{}, err
	}
	return lines[i], nil
}

// ChangeQuantity adds delta to the line's quantity. A line that drops to
// zero or below is removed, reported by removed=true.
func (c *Cart) ChangeQuantity(ctx context.Context, itemID, delta int) (line models.CartLine, removed bool, err error) {
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()

	lines, err := c.load(ctx)
	if err != nil {
		return models.CartLine{}, false, err
	}
	i := indexOf(lines, itemID)
	if i < 0 {
		return models.CartLine{}, false, fmt.Errorf("item %d: %w", itemID, ErrLineNotFound)
	}

	line = lines[i]
	line.Quantity += delta
	if line.Quantity <= 0 {
		lines = append(lines[:i], lines[i+1:]...)
		if err := c.save(ctx, lines); err != nil {
			return models.CartLine{}, false, err
		}
		line.Quantity = 0
		return line, true, nil
	}
	lines[i] = line
	if err := c.save(ctx, lines); err != nil {
		return models.CartLine{}, false, err
	}
	return line, false, nil
}

func (c *Cart) RemoveItem(ctx context.Context, itemID int) error {
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()

	lines, err := c.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(lines, itemID)
	if i < 0 {
		return fmt.Errorf("item %d: %w", itemID, ErrLineNotFound)
	}
	return c.save(ctx, append(lines[:i], lines[i+1:]...))
}

// Clear empties the cart once confirm approves. An empty cart returns
// ErrEmptyCart without asking.
func (c *Cart) Clear(ctx context.Context, confirm func() bool) error {
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()

	lines, err := c.load(ctx)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	if confirm == nil || !confirm() {
		return ErrDeclined
	}
	return c.save(ctx, []models.CartLine{})
}

// Confirm records the cart as an order in the sales log and empties it.
// If the order cannot be recorded the cart is left as it was.
func (c *Cart) Confirm(ctx context.Context) (models.Order, error) {
	s := c.svc
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := c.load(ctx)
	if err != nil {
		return models.Order{}, err
	}
	if len(lines) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	now := s.now().UTC()
	order := models.Order{
		ID:    s.nextOrderID(now),
		Date:  now,
		Items: models.CloneLines(lines),
		Total: models.Total(lines),
	}
	if err := s.sales.Append(ctx, order); err != nil {
		return models.Order{}, fmt.Errorf("record order: %w", err)
	}
	s.lastOrderID = order.ID

	if err := c.save(ctx, []models.CartLine{}); err != nil {
		// The sale is already recorded; a stale cart is the lesser problem.
		s.log.Error("Failed to clear cart after confirmation", "order_id", order.ID, "error", err)
	}
	s.log.Info("Order confirmed", "order_id", order.ID, "items", len(order.Items), "total", order.Total)

	for _, fn := range s.onConfirm {
		fn(order)
	}
	return order, nil
}

// nextOrderID derives an id from the clock, bumped past the previous one
// when two confirmations land in the same millisecond.
func (s *Service) nextOrderID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastOrderID {
		id = s.lastOrderID + 1
	}
	return id
}

func (c *Cart) load(ctx context.Context) ([]models.CartLine, error) {
	var lines []models.CartLine
	if _, err := c.svc.docs.Load(ctx, c.key, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *Cart) save(ctx context.Context, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return c.svc.docs.Save(ctx, c.key, lines)
}

func indexOf(lines []models.CartLine, id int) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}
