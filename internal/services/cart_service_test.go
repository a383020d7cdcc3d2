package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/luminaphoto/lumina/internal/media"
	"github.com/luminaphoto/lumina/internal/models"
	repositorymocks "github.com/luminaphoto/lumina/internal/repository/mocks"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCartService_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cartRepo := repositorymocks.NewMockCartRepository(ctrl)
	photoRepo := repositorymocks.NewMockPhotoRepository(ctrl)
	purchaseRepo := repositorymocks.NewMockPurchaseRepository(ctrl)
	svc := NewCartService(cartRepo, photoRepo, purchaseRepo, media.NewURLBuilder("https://cdn.example.com"))
	ctx := context.Background()

	t.Run("adds a photo", func(t *testing.T) {
		photoRepo.EXPECT().GetByID(gomock.Any(), "photo_1").Return(&models.Photo{ID: "photo_1"}, nil)
		purchaseRepo.EXPECT().Exists(gomock.Any(), "user_abc", "photo_1").Return(false, nil)
		cartRepo.EXPECT().AddItem(gomock.Any(), "user_abc", "photo_1").Return(nil)

		err := svc.Add(ctx, "user_abc", "photo_1")
		assert.NoError(t, err)
	})

	t.Run("rejects an already purchased photo", func(t *testing.T) {
		photoRepo.EXPECT().GetByID(gomock.Any(), "photo_1").Return(&models.Photo{ID: "photo_1"}, nil)
		purchaseRepo.EXPECT().Exists(gomock.Any(), "user_abc", "photo_1").Return(true, nil)

		err := svc.Add(ctx, "user_abc", "photo_1")
		assert.ErrorIs(t, err, pkgerrors.ErrAlreadyPurchased)
	})

	t.Run("rejects a missing photo", func(t *testing.T) {
		photoRepo.EXPECT().GetByID(gomock.Any(), "photo_x").Return(nil, pkgerrors.ErrPhotoNotFound)

		err := svc.Add(ctx, "user_abc", "photo_x")
		assert.ErrorIs(t, err, pkgerrors.ErrPhotoNotFound)
	})
}

func TestCartService_View(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cartRepo := repositorymocks.NewMockCartRepository(ctrl)
	photoRepo := repositorymocks.NewMockPhotoRepository(ctrl)
	purchaseRepo := repositorymocks.NewMockPurchaseRepository(ctrl)
	svc := NewCartService(cartRepo, photoRepo, purchaseRepo, media.NewURLBuilder("https://cdn.example.com"))

	cartRepo.EXPECT().Get(gomock.Any(), "user_abc").Return(
		&models.Cart{UserID: "user_abc", PhotoIDs: []string{"photo_1", "photo_gone", "photo_2"}}, nil)
	photoRepo.EXPECT().GetByID(gomock.Any(), "photo_1").Return(
		&models.Photo{ID: "photo_1", EventID: "event_1", Price: 10.0}, nil)
	photoRepo.EXPECT().GetByID(gomock.Any(), "photo_gone").Return(nil, pkgerrors.ErrPhotoNotFound)
	photoRepo.EXPECT().GetByID(gomock.Any(), "photo_2").Return(
		&models.Photo{ID: "photo_2", EventID: "event_1", Price: 15.0}, nil)

	view, err := svc.View(context.Background(), "user_abc")
	assert.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 25.0, view.Total)
}
