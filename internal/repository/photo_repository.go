package repository

import (
	"context"

	"github.com/luminaphoto/lumina/internal/models"
)

type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Photo, error)
	GetPrice(ctx context.Context, id string) (float64, error)
	Count(ctx context.Context) (int64, error)
}
