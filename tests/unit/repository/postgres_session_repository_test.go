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

func TestPostgresCheckoutSessionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresCheckoutSessionRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`INSERT INTO checkout_sessions (session_id, user_id, items, total, currency)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`)

	session := &models.CheckoutSession{
		SessionID: "cs_1",
		UserID:    "user_1",
		Items: []models.SnapshotItem{
			{PhotoID: "photo_1", UnitPrice: 10.0},
			{PhotoID: "photo_2", UnitPrice: 15.0},
		},
		Total:    25.0,
		Currency: "eur",
	}

	createdAt := time.Now()
	mock.ExpectQuery(query).
		WithArgs(session.SessionID, session.UserID, sqlmock.AnyArg(), session.Total, session.Currency).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	err = repo.Create(ctx, session)
	assert.NoError(t, err)
	assert.Equal(t, createdAt, session.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckoutSessionRepository_GetBySessionID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresCheckoutSessionRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT session_id, user_id, items, total, currency, created_at
		FROM checkout_sessions WHERE session_id = $1`)

	t.Run("Found", func(t *testing.T) {
		createdAt := time.Now()
		items := []byte(`[{"photo_id":"photo_1","unit_price":10},{"photo_id":"photo_2","unit_price":15}]`)
		rows := sqlmock.NewRows([]string{"session_id", "user_id", "items", "total", "currency", "created_at"}).
			AddRow("cs_1", "user_1", items, 25.0, "eur", createdAt)
		mock.ExpectQuery(query).WithArgs("cs_1").WillReturnRows(rows)

		session, err := repo.GetBySessionID(ctx, "cs_1")
		assert.NoError(t, err)
		assert.Equal(t, "user_1", session.UserID)
		assert.Equal(t, 25.0, session.Total)
		assert.Len(t, session.Items, 2)
		assert.Equal(t, "photo_1", session.Items[0].PhotoID)
		assert.Equal(t, 10.0, session.Items[0].UnitPrice)
		assert.Equal(t, 15.0, session.Items[1].UnitPrice)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("cs_missing").
			WillReturnRows(sqlmock.NewRows([]string{"session_id", "user_id", "items", "total", "currency", "created_at"}))

		session, err := repo.GetBySessionID(ctx, "cs_missing")
		assert.ErrorIs(t, err, pkgerrors.ErrUnknownSession)
		assert.Nil(t, session)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
