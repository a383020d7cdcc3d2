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

func TestPostgresPhotoRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPhotoRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`INSERT INTO photos (photo_id, event_id, filename, price, width, height)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`)

	t.Run("Success", func(t *testing.T) {
		photo := &models.Photo{
			ID:       "photo_1",
			EventID:  "event_1",
			Filename: "dsc001.jpg",
			Price:    10.0,
			Width:    4000,
			Height:   3000,
		}
		createdAt := time.Now()
		mock.ExpectQuery(query).
			WithArgs(photo.ID, photo.EventID, photo.Filename, photo.Price, photo.Width, photo.Height).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

		err := repo.Create(ctx, photo)
		assert.NoError(t, err)
		assert.Equal(t, createdAt, photo.CreatedAt)
	})

	t.Run("NonPositivePrice", func(t *testing.T) {
		err := repo.Create(ctx, &models.Photo{ID: "photo_free", EventID: "event_1", Price: 0})
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPhotoRepository_GetPrice(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPhotoRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT price FROM photos WHERE photo_id = $1`)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("photo_1").
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(15.0))

		price, err := repo.GetPrice(ctx, "photo_1")
		assert.NoError(t, err)
		assert.Equal(t, 15.0, price)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("photo_missing").
			WillReturnRows(sqlmock.NewRows([]string{"price"}))

		_, err := repo.GetPrice(ctx, "photo_missing")
		assert.ErrorIs(t, err, pkgerrors.ErrPhotoNotFound)
	})
}

func TestPostgresPhotoRepository_ListByEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPhotoRepository(db)

	createdAt := time.Now()
	rows := sqlmock.NewRows([]string{"photo_id", "event_id", "filename", "price", "width", "height", "created_at"}).
		AddRow("photo_1", "event_1", "dsc001.jpg", 10.0, 4000, 3000, createdAt).
		AddRow("photo_2", "event_1", "dsc002.jpg", 15.0, 4000, 3000, createdAt)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT photo_id, event_id, filename, price, width, height, created_at
		FROM photos WHERE event_id = $1 ORDER BY created_at`)).
		WithArgs("event_1").WillReturnRows(rows)

	photos, err := repo.ListByEvent(context.Background(), "event_1")
	assert.NoError(t, err)
	assert.Len(t, photos, 2)
	assert.Equal(t, "photo_1", photos[0].ID)
	assert.Equal(t, 15.0, photos[1].Price)
}
