package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/luminaphoto/lumina/internal/infrastructure/observability"
	"github.com/luminaphoto/lumina/internal/models"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

func (r *PostgresTransactionRepository) Create(ctx context.Context, tx *models.PaymentTransaction) error {
	var err error
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "CreateTransaction")
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("CreateTransaction", status).Inc()
		observability.RepositoryDuration.WithLabelValues("CreateTransaction").Observe(time.Since(start).Seconds())
	}()

	if tx == nil {
		err = pkgerrors.ErrNilTransaction
		slog.Error("failed to create transaction", "method", "Create", "error", err)
		return err
	}
	if tx.Status != models.StatusPending && tx.Status != models.StatusCompleted {
		err = fmt.Errorf("invalid transaction status %q", tx.Status)
		slog.Error("invalid transaction status", "method", "Create", "status", tx.Status, "error", err)
		return err
	}
	if tx.Amount <= 0 {
		err = fmt.Errorf("amount must be positive")
		slog.Error("amount must be positive", "method", "Create", "amount", tx.Amount, "error", err)
		return err
	}

	span.SetAttributes(
		attribute.String("session_id", tx.SessionID),
		attribute.String("user_id", tx.UserID),
		attribute.Float64("amount", tx.Amount),
		attribute.String("status", string(tx.Status)),
	)

	query := `INSERT INTO payment_transactions (transaction_id, session_id, user_id, photo_ids, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`
	err = r.db.QueryRowContext(ctx, query,
		tx.ID, tx.SessionID, tx.UserID, pq.Array(tx.PhotoIDs), tx.Amount, tx.Currency, tx.Status,
	).Scan(&tx.CreatedAt)
	if err != nil {
		slog.Error("failed to create transaction", "method", "Create", "session_id", tx.SessionID, "user_id", tx.UserID, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	slog.Info("transaction created", "method", "Create", "transaction_id", tx.ID, "session_id", tx.SessionID, "user_id", tx.UserID, "amount", tx.Amount)
	return nil
}

func (r *PostgresTransactionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	var err error
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "GetTransactionBySessionID")
	span.SetAttributes(attribute.String("session_id", sessionID))
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("GetTransactionBySessionID", status).Inc()
		observability.RepositoryDuration.WithLabelValues("GetTransactionBySessionID").Observe(time.Since(start).Seconds())
	}()

	var tx models.PaymentTransaction
	var completedAt sql.NullTime
	query := `SELECT transaction_id, session_id, user_id, photo_ids, amount, currency, status, created_at, completed_at
		FROM payment_transactions WHERE session_id = $1`
	err = r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&tx.ID, &tx.SessionID, &tx.UserID, pq.Array(&tx.PhotoIDs), &tx.Amount, &tx.Currency, &tx.Status, &tx.CreatedAt, &completedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrUnknownSession
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get transaction", "method", "GetBySessionID", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to get transaction by session id: %w", err)
	}
	if completedAt.Valid {
		tx.CompletedAt = &completedAt.Time
	}

	return &tx, nil
}

// MarkCompleted is the compare-and-set at the heart of reconciliation:
// the row moves to completed only if it is still pending at the moment of
// the write, so exactly one of any number of concurrent callers wins.
func (r *PostgresTransactionRepository) MarkCompleted(ctx context.Context, sessionID string) (bool, error) {
	var err error
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "MarkTransactionCompleted")
	span.SetAttributes(attribute.String("session_id", sessionID))
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("MarkTransactionCompleted", status).Inc()
		observability.RepositoryDuration.WithLabelValues("MarkTransactionCompleted").Observe(time.Since(start).Seconds())
	}()

	query := `UPDATE payment_transactions SET status = $1, completed_at = NOW()
		WHERE session_id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, models.StatusCompleted, sessionID, models.StatusPending)
	if err != nil {
		slog.Error("failed to complete transaction", "method", "MarkCompleted", "session_id", sessionID, "error", err)
		return false, fmt.Errorf("failed to complete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	won := affected == 1
	span.SetAttributes(attribute.Bool("transition_won", won))
	if won {
		slog.Info("transaction completed", "method", "MarkCompleted", "session_id", sessionID)
	}
	return won, nil
}

func (r *PostgresTransactionRepository) SumCompletedAmount(ctx context.Context) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM payment_transactions WHERE status = $1`
	err := r.db.QueryRowContext(ctx, query, models.StatusCompleted).Scan(&total)
	if err != nil {
		slog.Error("failed to sum completed transactions", "method", "SumCompletedAmount", "error", err)
		return 0, fmt.Errorf("failed to sum completed transactions: %w", err)
	}
	return total, nil
}
