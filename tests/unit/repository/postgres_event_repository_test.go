package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/luminaphoto/lumina/internal/models"
	repository "github.com/luminaphoto/lumina/internal/repository/postgres"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPostgresEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresEventRepository(db)

	event := &models.Event{
		ID:        "event_1",
		Name:      "Spring Gala",
		Date:      "2025-05-01",
		IsPublic:  true,
		CreatedBy: "user_admin",
	}
	createdAt := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO events (event_id, name, description, date, is_public, created_by)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`)).
		WithArgs(event.ID, event.Name, event.Description, event.Date, event.IsPublic, event.CreatedBy).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	err = repo.Create(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, createdAt, event.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEventRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresEventRepository(db)
	ctx := context.Background()

	columns := []string{"event_id", "name", "description", "date", "is_public", "photo_count", "cover_photo", "created_by", "created_at"}
	createdAt := time.Now()

	t.Run("PublicOnly", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("event_1", "Spring Gala", "", "2025-05-01", true, 3, "photo_1", "user_admin", createdAt)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT event_id, name, description, date, is_public, photo_count, cover_photo, created_by, created_at
		FROM events WHERE is_public = TRUE ORDER BY date DESC`)).
			WillReturnRows(rows)

		events, err := repo.List(ctx, true)
		assert.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, "photo_1", events[0].CoverPhoto)
	})

	t.Run("All", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("event_1", "Spring Gala", "", "2025-05-01", true, 3, "photo_1", "user_admin", createdAt).
			AddRow("event_2", "Private Shoot", "", "2025-04-01", false, 0, nil, "user_admin", createdAt)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT event_id, name, description, date, is_public, photo_count, cover_photo, created_by, created_at
		FROM events ORDER BY date DESC`)).
			WillReturnRows(rows)

		events, err := repo.List(ctx, false)
		assert.NoError(t, err)
		assert.Len(t, events, 2)
		assert.Equal(t, "", events[1].CoverPhoto)
	})
}

func TestPostgresEventRepository_RegisterPhoto(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresEventRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`UPDATE events SET photo_count = photo_count + 1,
		cover_photo = COALESCE(cover_photo, $1)
		WHERE event_id = $2`)

	t.Run("Registered", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs("photo_1", "event_1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.RegisterPhoto(ctx, "event_1", "photo_1"))
	})

	t.Run("UnknownEvent", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs("photo_1", "event_missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.RegisterPhoto(ctx, "event_missing", "photo_1")
		assert.ErrorIs(t, err, pkgerrors.ErrEventNotFound)
	})
}
