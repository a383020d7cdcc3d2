package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/luminaphoto/lumina/internal/infrastructure/observability"
	"github.com/luminaphoto/lumina/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type PostgresCartRepository struct {
	db *sql.DB
}

func NewPostgresCartRepository(db *sql.DB) *PostgresCartRepository {
	return &PostgresCartRepository{db: db}
}

func (r *PostgresCartRepository) AddItem(ctx context.Context, userID, photoID string) error {
	query := `INSERT INTO cart_items (user_id, photo_id) VALUES ($1, $2)
		ON CONFLICT (user_id, photo_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, photoID); err != nil {
		slog.Error("failed to add cart item", "method", "AddItem", "user_id", userID, "photo_id", photoID, "error", err)
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *PostgresCartRepository) RemoveItem(ctx context.Context, userID, photoID string) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND photo_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, photoID); err != nil {
		slog.Error("failed to remove cart item", "method", "RemoveItem", "user_id", userID, "photo_id", photoID, "error", err)
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (r *PostgresCartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	query := `SELECT photo_id, created_at FROM cart_items WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Error("failed to get cart", "method", "Get", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	defer rows.Close()

	cart := &models.Cart{UserID: userID}
	for rows.Next() {
		var photoID string
		var createdAt time.Time
		if err := rows.Scan(&photoID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		if cart.CreatedAt.IsZero() || createdAt.Before(cart.CreatedAt) {
			cart.CreatedAt = createdAt
		}
		cart.PhotoIDs = append(cart.PhotoIDs, photoID)
	}
	return cart, rows.Err()
}

// Delete removes the whole cart. Zero deleted rows is fine: the losing
// reconciliation trigger, or a crash retry, may find it already gone.
func (r *PostgresCartRepository) Delete(ctx context.Context, userID string) error {
	var err error
	tracer := otel.Tracer("cart-repository")
	ctx, span := tracer.Start(ctx, "DeleteCart")
	span.SetAttributes(attribute.String("user_id", userID))
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("DeleteCart", status).Inc()
		observability.RepositoryDuration.WithLabelValues("DeleteCart").Observe(time.Since(start).Seconds())
	}()

	_, err = r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		slog.Error("failed to delete cart", "method", "Delete", "user_id", userID, "error", err)
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
