package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luminaphoto/lumina/internal/models"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
)

type PostgresPhotoRepository struct {
	db *sql.DB
}

func NewPostgresPhotoRepository(db *sql.DB) *PostgresPhotoRepository {
	return &PostgresPhotoRepository{db: db}
}

func (r *PostgresPhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	if photo.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}

	query := `INSERT INTO photos (photo_id, event_id, filename, price, width, height)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		photo.ID, photo.EventID, photo.Filename, photo.Price, photo.Width, photo.Height,
	).Scan(&photo.CreatedAt)
	if err != nil {
		slog.Error("failed to create photo", "method", "Create", "event_id", photo.EventID, "error", err)
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

func (r *PostgresPhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	var photo models.Photo
	query := `SELECT photo_id, event_id, filename, price, width, height, created_at FROM photos WHERE photo_id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&photo.ID, &photo.EventID, &photo.Filename, &photo.Price, &photo.Width, &photo.Height, &photo.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &photo, nil
}

func (r *PostgresPhotoRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Photo, error) {
	query := `SELECT photo_id, event_id, filename, price, width, height, created_at
		FROM photos WHERE event_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		var photo models.Photo
		if err := rows.Scan(
			&photo.ID, &photo.EventID, &photo.Filename, &photo.Price, &photo.Width, &photo.Height, &photo.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (r *PostgresPhotoRepository) GetPrice(ctx context.Context, id string) (float64, error) {
	var price float64
	err := r.db.QueryRowContext(ctx, `SELECT price FROM photos WHERE photo_id = $1`, id).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, pkgerrors.ErrPhotoNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get photo price: %w", err)
	}
	return price, nil
}

func (r *PostgresPhotoRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}
