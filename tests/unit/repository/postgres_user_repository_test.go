package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/luminaphoto/lumina/internal/models"
	repository "github.com/luminaphoto/lumina/internal/repository/postgres"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPostgresUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`INSERT INTO users (user_id, email, name, password_hash, role)`)

	t.Run("Success", func(t *testing.T) {
		user := &models.User{ID: "user_1", Email: "anna@example.com", Name: "Anna", PasswordHash: "hash", Role: models.RoleClient}
		mock.ExpectQuery(query).
			WithArgs(user.ID, user.Email, user.Name, user.PasswordHash, user.Role).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		err := repo.Create(ctx, user)
		assert.NoError(t, err)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		user := &models.User{ID: "user_2", Email: "anna@example.com", Name: "Anna", PasswordHash: "hash", Role: models.RoleClient}
		mock.ExpectQuery(query).
			WithArgs(user.ID, user.Email, user.Name, user.PasswordHash, user.Role).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, pkgerrors.ErrEmailExists)
	})

	t.Run("MissingFields", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{ID: "user_3"})
		assert.Error(t, err)
	})
}

func TestPostgresUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT user_id, email, name, password_hash, role, created_at FROM users WHERE email = $1`)

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"user_id", "email", "name", "password_hash", "role", "created_at"}).
			AddRow("user_1", "anna@example.com", "Anna", "hash", "client", time.Now())
		mock.ExpectQuery(query).WithArgs("anna@example.com").WillReturnRows(rows)

		user, err := repo.GetByEmail(ctx, "anna@example.com")
		assert.NoError(t, err)
		assert.Equal(t, "user_1", user.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ghost@example.com").WillReturnRows(sqlmock.NewRows(nil))

		user, err := repo.GetByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
		assert.Nil(t, user)
	})
}

func TestPostgresUserRepository_UpdateRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresUserRepository(db)

	query := regexp.QuoteMeta(`UPDATE users SET role = $1 WHERE user_id = $2`)

	t.Run("Updated", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs("admin", "user_1").WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.UpdateRole(context.Background(), "user_1", "admin"))
	})

	t.Run("UnknownUser", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs("admin", "user_x").WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.UpdateRole(context.Background(), "user_x", "admin")
		assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
	})
}
