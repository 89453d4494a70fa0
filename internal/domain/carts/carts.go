package carts

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"festive/internal/i18n"
	"festive/internal/menu"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository keeps guest carts in memory. A cart lives for ttl after its
// last change; expired carts are dropped on access and by SweepExpired.
type Repository struct {
	mu      sync.Mutex
	carts   map[string]*Cart
	catalog *menu.Catalog
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.SugaredLogger
}

func NewRepository(catalog *menu.Catalog, logger *zap.SugaredLogger) *Repository {
	return NewRepositoryWithTTL(catalog, 24*time.Hour, logger)
}

func NewRepositoryWithTTL(catalog *menu.Catalog, ttl time.Duration, logger *zap.SugaredLogger) *Repository {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Repository{
		carts:   make(map[string]*Cart),
		catalog: catalog,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// --- internal helpers ---

// lookupLocked returns the live cart for token, deleting it if it expired.
func (r *Repository) lookupLocked(token string) (*Cart, error) {
	c, ok := r.carts[strings.TrimSpace(token)]
	if !ok {
		return nil, ErrCartNotFound
	}
	if !c.ExpiresAt.After(r.now()) {
		delete(r.carts, c.Token)
		return nil, ErrCartExpired
	}
	return c, nil
}

// touchLocked replaces c with next and pushes the expiry out.
func (r *Repository) touchLocked(next *Cart) *Cart {
	now := r.now()
	next.UpdatedAt = now
	next.ExpiresAt = now.Add(r.ttl)
	r.carts[next.Token] = next
	return clone(next)
}

func clone(c *Cart) *Cart {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	return &cp
}

func (r *Repository) Create(ctx context.Context) (*Cart, error) {
	now := r.now()
	c := &Cart{
		Token:     uuid.NewString(),
		Items:     []CartLine{},
		CreatedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.touchLocked(c), nil
}

func (r *Repository) Get(ctx context.Context, token string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.lookupLocked(token)
	if err != nil {
		return nil, err
	}
	return clone(c), nil
}

// AddItem adds a dish to the cart. Adding a dish that is already selected is
// a no-op apart from refreshing the TTL.
func (r *Repository) AddItem(ctx context.Context, token, dishID string) (*Cart, error) {
	dish, err := r.catalog.Get(dishID)
	if err != nil {
		return nil, fmt.Errorf("add %q to cart: %w", dishID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.lookupLocked(token)
	if err != nil {
		return nil, err
	}
	next := clone(c)
	if !slices.ContainsFunc(next.Items, func(l CartLine) bool { return l.DishID == dish.ID }) {
		next.Items = append(next.Items, CartLine{
			DishID:   dish.ID,
			Name:     dish.Name,
			Category: dish.Category,
			AddedAt:  r.now(),
		})
	}
	return r.touchLocked(next), nil
}

func (r *Repository) RemoveItem(ctx context.Context, token, dishID string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.lookupLocked(token)
	if err != nil {
		return nil, err
	}
	next := clone(c)
	next.Items = slices.DeleteFunc(next.Items, func(l CartLine) bool { return l.DishID == dishID })
	return r.touchLocked(next), nil
}

func (r *Repository) Clear(ctx context.Context, token string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.lookupLocked(token)
	if err != nil {
		return nil, err
	}
	next := clone(c)
	next.Items = []CartLine{}
	return r.touchLocked(next), nil
}

// SweepExpired drops every expired cart and returns how many went.
func (r *Repository) SweepExpired(ctx context.Context) int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for token, c := range r.carts {
		if !c.ExpiresAt.After(now) {
			delete(r.carts, token)
			n++
		}
	}
	return n
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (r *Repository) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.SweepExpired(ctx); n > 0 {
				r.logger.Infow("expired carts swept", "count", n)
			}
		}
	}
}

// FormatSelection renders the numbered "selected items" block that goes into
// inquiries, e.g. "1. Chicken Biryani (non-veg)".
func FormatSelection(items []CartLine, lang i18n.Lang) string {
	if len(items) == 0 {
		return i18n.T(lang, "no_items_selected")
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, it.Name.In(lang), it.Category)
	}
	return b.String()
}
