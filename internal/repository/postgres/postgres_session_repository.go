package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/luminaphoto/lumina/internal/models"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
)

type PostgresCheckoutSessionRepository struct {
	db *sql.DB
}

func NewPostgresCheckoutSessionRepository(db *sql.DB) *PostgresCheckoutSessionRepository {
	return &PostgresCheckoutSessionRepository{db: db}
}

func (r *PostgresCheckoutSessionRepository) Create(ctx context.Context, session *models.CheckoutSession) error {
	items, err := json.Marshal(session.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot items: %w", err)
	}

	query := `INSERT INTO checkout_sessions (session_id, user_id, items, total, currency)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	err = r.db.QueryRowContext(ctx, query,
		session.SessionID, session.UserID, items, session.Total, session.Currency,
	).Scan(&session.CreatedAt)
	if err != nil {
		slog.Error("failed to create checkout session", "method", "Create", "session_id", session.SessionID, "user_id", session.UserID, "error", err)
		return fmt.Errorf("failed to create checkout session: %w", err)
	}

	slog.Info("checkout session created", "method", "Create", "session_id", session.SessionID, "user_id", session.UserID, "total", session.Total)
	return nil
}

func (r *PostgresCheckoutSessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	var items []byte
	query := `SELECT session_id, user_id, items, total, currency, created_at
		FROM checkout_sessions WHERE session_id = $1`
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.SessionID, &session.UserID, &items, &session.Total, &session.Currency, &session.CreatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrUnknownSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}
	if err := json.Unmarshal(items, &session.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot items: %w", err)
	}
	return &session, nil
}
