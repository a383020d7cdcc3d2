package repository

import (
	"context"

	"github.com/luminaphoto/lumina/internal/models"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, publicOnly bool) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	// RegisterPhoto bumps the event's photo count and sets the cover
	// photo when none is set yet.
	RegisterPhoto(ctx context.Context, eventID, photoID string) error
	Count(ctx context.Context) (int64, error)
}
