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

type PostgresPurchaseRepository struct {
	db *sql.DB
}

func NewPostgresPurchaseRepository(db *sql.DB) *PostgresPurchaseRepository {
	return &PostgresPurchaseRepository{db: db}
}

// Upsert relies on the (user_id, photo_id) unique constraint: a conflict
// means the grant already exists and the insert is silently skipped, so
// reconciliation retries and overlapping sessions never duplicate a
// grant.
func (r *PostgresPurchaseRepository) Upsert(ctx context.Context, purchase *models.Purchase) (bool, error) {
	var err error
	tracer := otel.Tracer("purchase-repository")
	ctx, span := tracer.Start(ctx, "UpsertPurchase")
	span.SetAttributes(
		attribute.String("user_id", purchase.UserID),
		attribute.String("photo_id", purchase.PhotoID),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("UpsertPurchase", status).Inc()
		observability.RepositoryDuration.WithLabelValues("UpsertPurchase").Observe(time.Since(start).Seconds())
	}()

	query := `INSERT INTO purchases (purchase_id, photo_id, user_id, session_id, purchased_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, photo_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		purchase.ID, purchase.PhotoID, purchase.UserID, purchase.SessionID, purchase.PurchasedAt,
	)
	if err != nil {
		slog.Error("failed to upsert purchase", "method", "Upsert", "user_id", purchase.UserID, "photo_id", purchase.PhotoID, "error", err)
		return false, fmt.Errorf("failed to upsert purchase: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	created := affected == 1
	if created {
		slog.Info("purchase granted", "method", "Upsert", "purchase_id", purchase.ID, "user_id", purchase.UserID, "photo_id", purchase.PhotoID)
	}
	return created, nil
}

// Exists gates paid-content delivery and must read the store directly;
// no cache sits in front of it.
func (r *PostgresPurchaseRepository) Exists(ctx context.Context, userID, photoID string) (bool, error) {
	var err error
	tracer := otel.Tracer("purchase-repository")
	ctx, span := tracer.Start(ctx, "PurchaseExists")
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("PurchaseExists", status).Inc()
		observability.RepositoryDuration.WithLabelValues("PurchaseExists").Observe(time.Since(start).Seconds())
	}()

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM purchases WHERE user_id = $1 AND photo_id = $2)`
	err = r.db.QueryRowContext(ctx, query, userID, photoID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check purchase", "method", "Exists", "user_id", userID, "photo_id", photoID, "error", err)
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return exists, nil
}

func (r *PostgresPurchaseRepository) ListByUser(ctx context.Context, userID string) ([]models.Purchase, error) {
	query := `SELECT purchase_id, photo_id, user_id, session_id, purchased_at
		FROM purchases WHERE user_id = $1 ORDER BY purchased_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Error("failed to list purchases", "method", "ListByUser", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []models.Purchase
	for rows.Next() {
		var p models.Purchase
		if err := rows.Scan(&p.ID, &p.PhotoID, &p.UserID, &p.SessionID, &p.PurchasedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (r *PostgresPurchaseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count purchases: %w", err)
	}
	return count, nil
}
