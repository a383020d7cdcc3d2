package repository

import (
	"context"

	"github.com/luminaphoto/lumina/internal/models"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.PaymentTransaction) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error)
	// MarkCompleted transitions the transaction for sessionID from
	// pending to completed with a single conditional write. It returns
	// true only for the invocation that performed the transition;
	// concurrent callers observe false and must not materialize.
	MarkCompleted(ctx context.Context, sessionID string) (bool, error)
	SumCompletedAmount(ctx context.Context) (float64, error)
}
