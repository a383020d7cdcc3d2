package repository

import (
	"context"

	"github.com/luminaphoto/lumina/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id, role string) error
	Count(ctx context.Context) (int64, error)
}
