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

type PostgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `INSERT INTO events (event_id, name, description, date, is_public, created_by)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		event.ID, event.Name, event.Description, event.Date, event.IsPublic, event.CreatedBy,
	).Scan(&event.CreatedAt)
	if err != nil {
		slog.Error("failed to create event", "method", "Create", "name", event.Name, "error", err)
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	var cover sql.NullString
	query := `SELECT event_id, name, description, date, is_public, photo_count, cover_photo, created_by, created_at
		FROM events WHERE event_id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.Name, &event.Description, &event.Date, &event.IsPublic,
		&event.PhotoCount, &cover, &event.CreatedBy, &event.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	event.CoverPhoto = cover.String
	return &event, nil
}

func (r *PostgresEventRepository) List(ctx context.Context, publicOnly bool) ([]models.Event, error) {
	query := `SELECT event_id, name, description, date, is_public, photo_count, cover_photo, created_by, created_at
		FROM events`
	if publicOnly {
		query += ` WHERE is_public = TRUE`
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		var cover sql.NullString
		if err := rows.Scan(
			&event.ID, &event.Name, &event.Description, &event.Date, &event.IsPublic,
			&event.PhotoCount, &cover, &event.CreatedBy, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.CoverPhoto = cover.String
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *PostgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `UPDATE events SET name = $1, description = $2, date = $3, is_public = $4 WHERE event_id = $5`
	res, err := r.db.ExecContext(ctx, query, event.Name, event.Description, event.Date, event.IsPublic, event.ID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrEventNotFound
	}
	return nil
}

// Delete removes the event; photos go with it via ON DELETE CASCADE.
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE event_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrEventNotFound
	}
	return nil
}

func (r *PostgresEventRepository) RegisterPhoto(ctx context.Context, eventID, photoID string) error {
	query := `UPDATE events SET photo_count = photo_count + 1,
		cover_photo = COALESCE(cover_photo, $1)
		WHERE event_id = $2`
	res, err := r.db.ExecContext(ctx, query, photoID, eventID)
	if err != nil {
		return fmt.Errorf("failed to register photo on event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrEventNotFound
	}
	return nil
}

func (r *PostgresEventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
