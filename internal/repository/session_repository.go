package repository

import (
	"context"

	"github.com/luminaphoto/lumina/internal/models"
)

type CheckoutSessionRepository interface {
	Create(ctx context.Context, session *models.CheckoutSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
}
