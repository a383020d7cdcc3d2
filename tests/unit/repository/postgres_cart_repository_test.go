package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	repository "github.com/luminaphoto/lumina/internal/repository/postgres"
	"github.com/stretchr/testify/assert"
)

func TestPostgresCartRepository_AddItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresCartRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`INSERT INTO cart_items (user_id, photo_id) VALUES ($1, $2)
		ON CONFLICT (user_id, photo_id) DO NOTHING`)

	t.Run("Inserted", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs("user_1", "photo_1").WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.AddItem(ctx, "user_1", "photo_1"))
	})

	t.Run("DuplicateIsNoop", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs("user_1", "photo_1").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.NoError(t, repo.AddItem(ctx, "user_1", "photo_1"))
	})
}

func TestPostgresCartRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresCartRepository(db)

	query := regexp.QuoteMeta(`SELECT photo_id, created_at FROM cart_items WHERE user_id = $1 ORDER BY created_at`)

	t.Run("WithItems", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows([]string{"photo_id", "created_at"}).
			AddRow("photo_1", now.Add(-time.Minute)).
			AddRow("photo_2", now)
		mock.ExpectQuery(query).WithArgs("user_1").WillReturnRows(rows)

		cart, err := repo.Get(context.Background(), "user_1")
		assert.NoError(t, err)
		assert.Equal(t, []string{"photo_1", "photo_2"}, cart.PhotoIDs)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("user_2").WillReturnRows(sqlmock.NewRows([]string{"photo_id", "created_at"}))

		cart, err := repo.Get(context.Background(), "user_2")
		assert.NoError(t, err)
		assert.Empty(t, cart.PhotoIDs)
	})
}

func TestPostgresCartRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresCartRepository(db)

	query := regexp.QuoteMeta(`DELETE FROM cart_items WHERE user_id = $1`)

	t.Run("DeletesAll", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs("user_1").WillReturnResult(sqlmock.NewResult(0, 3))
		assert.NoError(t, repo.Delete(context.Background(), "user_1"))
	})

	t.Run("AbsentCartIsNoop", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs("user_1").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.NoError(t, repo.Delete(context.Background(), "user_1"))
	})
}
