package repository

import (
	"context"

	"github.com/luminaphoto/lumina/internal/models"
)

type PurchaseRepository interface {
	// Upsert inserts the purchase unless a grant for the same
	// (user_id, photo_id) pair already exists, in which case it reports
	// created=false and leaves the existing row untouched.
	Upsert(ctx context.Context, purchase *models.Purchase) (created bool, err error)
	Exists(ctx context.Context, userID, photoID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.Purchase, error)
	Count(ctx context.Context) (int64, error)
}
