package repository

import (
	"context"

	"github.com/luminaphoto/lumina/internal/models"
)

type CartRepository interface {
	// AddItem is idempotent: adding a photo that is already in the cart
	// is a no-op.
	AddItem(ctx context.Context, userID, photoID string) error
	RemoveItem(ctx context.Context, userID, photoID string) error
	// Get returns a cart with an empty item list when the user has none.
	Get(ctx context.Context, userID string) (*models.Cart, error)
	// Delete removes the whole cart. Deleting an absent cart is not an
	// error; reconciliation may run after another trigger already
	// cleared it.
	Delete(ctx context.Context, userID string) error
}
