package carts

import (
	"context"
	"errors"
	"time"

	"festive/internal/menu"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrCartExpired  = errors.New("cart expired")
)

// Cart is a guest's dish selection. There is no quantity or price: the
// caterer quotes after the inquiry arrives.
type Cart struct {
	Token     string     `json:"token"`
	Items     []CartLine `json:"items"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartLine struct {
	DishID   string    `json:"dish_id"`
	Name     menu.Text `json:"name"`
	Category string    `json:"category"`
	AddedAt  time.Time `json:"added_at"`
}

type Store interface {
	Create(ctx context.Context) (*Cart, error)
	Get(ctx context.Context, token string) (*Cart, error)
	AddItem(ctx context.Context, token, dishID string) (*Cart, error)
	RemoveItem(ctx context.Context, token, dishID string) (*Cart, error)
	Clear(ctx context.Context, token string) (*Cart, error)

	// TTL / housekeeping
	SweepExpired(ctx context.Context) int
	RunSweeper(ctx context.Context, interval time.Duration)
}
