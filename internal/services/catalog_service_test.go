package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/luminaphoto/lumina/internal/infrastructure/redis"
	redismocks "github.com/luminaphoto/lumina/internal/infrastructure/redis/mocks"
	"github.com/luminaphoto/lumina/internal/media"
	"github.com/luminaphoto/lumina/internal/models"
	repositorymocks "github.com/luminaphoto/lumina/internal/repository/mocks"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakePurchaseChecker struct {
	owned map[string]bool
}

func (f *fakePurchaseChecker) HasPurchased(_ context.Context, userID, photoID string) (bool, error) {
	return f.owned[userID+"/"+photoID], nil
}

func TestCatalogService_ResolvePhotoURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eventRepo := repositorymocks.NewMockEventRepository(ctrl)
	photoRepo := repositorymocks.NewMockPhotoRepository(ctrl)
	redisClient := redismocks.NewMockRedisClient(ctrl)
	checker := &fakePurchaseChecker{owned: map[string]bool{"user_owner/photo_1": true}}
	svc := NewCatalogService(eventRepo, photoRepo, checker, redisClient, media.NewURLBuilder("https://cdn.example.com"))
	ctx := context.Background()

	photo := &models.Photo{ID: "photo_1", EventID: "event_1", Filename: "dsc001.jpg", Price: 10.0}
	photoJSON, _ := json.Marshal(photo)
	// Cached metadata; no repository hit expected.
	redisClient.EXPECT().Get(gomock.Any(), "photo:photo_1").Return(string(photoJSON), nil).AnyTimes()

	t.Run("thumbnail is public", func(t *testing.T) {
		url, err := svc.ResolvePhotoURL(ctx, "photo_1", "user_other", media.ResolutionThumbnail)
		assert.NoError(t, err)
		assert.Contains(t, url, "photo_1")
	})

	t.Run("watermarked is public", func(t *testing.T) {
		url, err := svc.ResolvePhotoURL(ctx, "photo_1", "user_other", media.ResolutionWatermarked)
		assert.NoError(t, err)
		assert.NotEmpty(t, url)
	})

	t.Run("original requires a grant", func(t *testing.T) {
		url, err := svc.ResolvePhotoURL(ctx, "photo_1", "user_other", media.ResolutionOriginal)
		assert.ErrorIs(t, err, pkgerrors.ErrNotPurchased)
		assert.Empty(t, url)

		url, err = svc.ResolvePhotoURL(ctx, "photo_1", "user_owner", media.ResolutionOriginal)
		assert.NoError(t, err)
		assert.NotEmpty(t, url)
	})

	t.Run("unknown resolution", func(t *testing.T) {
		_, err := svc.ResolvePhotoURL(ctx, "photo_1", "user_owner", "4k")
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidResolution)
	})
}

func TestCatalogService_GetPhoto_CacheMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eventRepo := repositorymocks.NewMockEventRepository(ctrl)
	photoRepo := repositorymocks.NewMockPhotoRepository(ctrl)
	redisClient := redismocks.NewMockRedisClient(ctrl)
	checker := &fakePurchaseChecker{owned: map[string]bool{}}
	svc := NewCatalogService(eventRepo, photoRepo, checker, redisClient, media.NewURLBuilder("https://cdn.example.com"))

	photo := &models.Photo{ID: "photo_1", EventID: "event_1", Filename: "dsc001.jpg", Price: 10.0}
	redisClient.EXPECT().Get(gomock.Any(), "photo:photo_1").Return("", redis.ErrKeyNotFound)
	photoRepo.EXPECT().GetByID(gomock.Any(), "photo_1").Return(photo, nil)
	photoJSON, _ := json.Marshal(photo)
	redisClient.EXPECT().Set(gomock.Any(), "photo:photo_1", string(photoJSON), photoCacheTTL).Return(nil)

	view, err := svc.GetPhoto(context.Background(), "photo_1", "user_other")
	assert.NoError(t, err)
	assert.Equal(t, "photo_1", view.PhotoID)
	assert.False(t, view.IsPurchased)
	assert.Empty(t, view.OriginalURL)
	assert.NotEmpty(t, view.WatermarkedURL)
}

func TestCatalogService_ListEventPhotos(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eventRepo := repositorymocks.NewMockEventRepository(ctrl)
	photoRepo := repositorymocks.NewMockPhotoRepository(ctrl)
	redisClient := redismocks.NewMockRedisClient(ctrl)
	checker := &fakePurchaseChecker{owned: map[string]bool{"user_abc/photo_1": true}}
	svc := NewCatalogService(eventRepo, photoRepo, checker, redisClient, media.NewURLBuilder("https://cdn.example.com"))

	photoRepo.EXPECT().ListByEvent(gomock.Any(), "event_1").Return([]models.Photo{
		{ID: "photo_1", EventID: "event_1", Price: 10.0},
		{ID: "photo_2", EventID: "event_1", Price: 15.0},
	}, nil)

	views, err := svc.ListEventPhotos(context.Background(), "event_1", "user_abc")
	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.True(t, views[0].IsPurchased)
	assert.NotEmpty(t, views[0].OriginalURL)
	assert.False(t, views[1].IsPurchased)
	assert.Empty(t, views[1].OriginalURL)
}

func TestCatalogService_AddPhoto(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eventRepo := repositorymocks.NewMockEventRepository(ctrl)
	photoRepo := repositorymocks.NewMockPhotoRepository(ctrl)
	redisClient := redismocks.NewMockRedisClient(ctrl)
	svc := NewCatalogService(eventRepo, photoRepo, &fakePurchaseChecker{}, redisClient, media.NewURLBuilder("https://cdn.example.com"))
	ctx := context.Background()

	t.Run("registers photo on the event", func(t *testing.T) {
		eventRepo.EXPECT().GetByID(gomock.Any(), "event_1").Return(&models.Event{ID: "event_1"}, nil)
		photoRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		eventRepo.EXPECT().RegisterPhoto(gomock.Any(), "event_1", gomock.Any()).Return(nil)

		photo, err := svc.AddPhoto(ctx, "event_1", "dsc001.jpg", 10.0, 6000, 4000)
		assert.NoError(t, err)
		assert.Equal(t, "event_1", photo.EventID)
		assert.NotEmpty(t, photo.ID)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		eventRepo.EXPECT().GetByID(gomock.Any(), "event_1").Return(&models.Event{ID: "event_1"}, nil)

		_, err := svc.AddPhoto(ctx, "event_1", "dsc002.jpg", 0, 6000, 4000)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	})

	t.Run("unknown event", func(t *testing.T) {
		eventRepo.EXPECT().GetByID(gomock.Any(), "event_x").Return(nil, pkgerrors.ErrEventNotFound)

		_, err := svc.AddPhoto(ctx, "event_x", "dsc003.jpg", 10.0, 6000, 4000)
		assert.ErrorIs(t, err, pkgerrors.ErrEventNotFound)
	})
}
