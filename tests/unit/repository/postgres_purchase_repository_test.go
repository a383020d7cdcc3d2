package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/luminaphoto/lumina/internal/models"
	repository "github.com/luminaphoto/lumina/internal/repository/postgres"
	"github.com/stretchr/testify/assert"
)

func TestPostgresPurchaseRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPurchaseRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`INSERT INTO purchases (purchase_id, photo_id, user_id, session_id, purchased_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, photo_id) DO NOTHING`)

	purchase := &models.Purchase{
		ID:          "purch_1",
		PhotoID:     "photo_1",
		UserID:      "user_1",
		SessionID:   "cs_1",
		PurchasedAt: time.Now(),
	}

	t.Run("Created", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(purchase.ID, purchase.PhotoID, purchase.UserID, purchase.SessionID, purchase.PurchasedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		created, err := repo.Upsert(ctx, purchase)
		assert.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("AlreadyGranted", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(purchase.ID, purchase.PhotoID, purchase.UserID, purchase.SessionID, purchase.PurchasedAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		created, err := repo.Upsert(ctx, purchase)
		assert.NoError(t, err)
		assert.False(t, created)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPurchaseRepository_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPurchaseRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM purchases WHERE user_id = $1 AND photo_id = $2)`)

	t.Run("Granted", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("user_1", "photo_1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.Exists(ctx, "user_1", "photo_1")
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("NotGranted", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("user_1", "photo_2").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.Exists(ctx, "user_1", "photo_2")
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestPostgresPurchaseRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPurchaseRepository(db)

	purchasedAt := time.Now()
	rows := sqlmock.NewRows([]string{"purchase_id", "photo_id", "user_id", "session_id", "purchased_at"}).
		AddRow("purch_2", "photo_2", "user_1", "cs_2", purchasedAt).
		AddRow("purch_1", "photo_1", "user_1", "cs_1", purchasedAt.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT purchase_id, photo_id, user_id, session_id, purchased_at
		FROM purchases WHERE user_id = $1 ORDER BY purchased_at DESC`)).
		WithArgs("user_1").WillReturnRows(rows)

	purchases, err := repo.ListByUser(context.Background(), "user_1")
	assert.NoError(t, err)
	assert.Len(t, purchases, 2)
	assert.Equal(t, "purch_2", purchases[0].ID)
}
