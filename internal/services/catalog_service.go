package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/luminaphoto/lumina/internal/infrastructure/redis"
	"github.com/luminaphoto/lumina/internal/media"
	"github.com/luminaphoto/lumina/internal/models"
	"github.com/luminaphoto/lumina/internal/repository"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const photoCacheTTL = 24 * time.Hour

// PhotoView is a photo as shown to a specific user: preview URLs always,
// the original URL only once the photo is purchased.
type PhotoView struct {
	PhotoID        string  `json:"photo_id"`
	EventID        string  `json:"event_id"`
	Filename       string  `json:"filename"`
	ThumbnailURL   string  `json:"thumbnail_url"`
	WatermarkedURL string  `json:"watermarked_url"`
	OriginalURL    string  `json:"original_url,omitempty"`
	Price          float64 `json:"price"`
	IsPurchased    bool    `json:"is_purchased"`
	Width          int32   `json:"width"`
	Height         int32   `json:"height"`
	CreatedAt      string  `json:"created_at"`
}

type CatalogService interface {
	CreateEvent(ctx context.Context, name, description, date string, isPublic bool, createdBy string) (*models.Event, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context, publicOnly bool) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, eventID string) error
	AddPhoto(ctx context.Context, eventID, filename string, price float64, width, height int32) (*models.Photo, error)
	ListEventPhotos(ctx context.Context, eventID, userID string) ([]PhotoView, error)
	GetPhoto(ctx context.Context, photoID, userID string) (*PhotoView, error)
	ResolvePhotoURL(ctx context.Context, photoID, userID, resolution string) (string, error)
}

// PurchaseChecker is the slice of the checkout service the catalog needs
// for the tiered-delivery gate.
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, userID, photoID string) (bool, error)
}

type catalogService struct {
	eventRepo   repository.EventRepository
	photoRepo   repository.PhotoRepository
	purchases   PurchaseChecker
	redisClient redis.RedisClient
	urls        *media.URLBuilder
}

func NewCatalogService(
	eventRepo repository.EventRepository,
	photoRepo repository.PhotoRepository,
	purchases PurchaseChecker,
	redisClient redis.RedisClient,
	urls *media.URLBuilder,
) *catalogService {
	return &catalogService{
		eventRepo:   eventRepo,
		photoRepo:   photoRepo,
		purchases:   purchases,
		redisClient: redisClient,
		urls:        urls,
	}
}

func (s *catalogService) CreateEvent(ctx context.Context, name, description, date string, isPublic bool, createdBy string) (*models.Event, error) {
	if name == "" || date == "" {
		return nil, pkgerrors.ErrInvalidInput
	}
	event := &models.Event{
		ID:          newID("event"),
		Name:        name,
		Description: description,
		Date:        date,
		IsPublic:    isPublic,
		CreatedBy:   createdBy,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	slog.Info("event created", "event_id", event.ID, "name", name)
	return event, nil
}

func (s *catalogService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return s.eventRepo.GetByID(ctx, eventID)
}

func (s *catalogService) ListEvents(ctx context.Context, publicOnly bool) ([]models.Event, error) {
	return s.eventRepo.List(ctx, publicOnly)
}

func (s *catalogService) UpdateEvent(ctx context.Context, event *models.Event) error {
	return s.eventRepo.Update(ctx, event)
}

func (s *catalogService) DeleteEvent(ctx context.Context, eventID string) error {
	return s.eventRepo.Delete(ctx, eventID)
}

// AddPhoto registers photo metadata under an event. Upload and
// transformation happen at the CDN; only pricing and identity live here.
func (s *catalogService) AddPhoto(ctx context.Context, eventID, filename string, price float64, width, height int32) (*models.Photo, error) {
	tracer := otel.Tracer("catalog-service")
	ctx, span := tracer.Start(ctx, "AddPhoto")
	defer span.End()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, pkgerrors.ErrInvalidInput
	}

	photo := &models.Photo{
		ID:       newID("photo"),
		EventID:  eventID,
		Filename: filename,
		Price:    price,
		Width:    width,
		Height:   height,
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "photo creation failed")
		return nil, err
	}
	if err := s.eventRepo.RegisterPhoto(ctx, eventID, photo.ID); err != nil {
		span.RecordError(err)
		slog.Error("failed to register photo on event", "event_id", eventID, "photo_id", photo.ID, "error", err)
	}

	slog.Info("photo added", "photo_id", photo.ID, "event_id", eventID, "price", price)
	return photo, nil
}

func (s *catalogService) ListEventPhotos(ctx context.Context, eventID, userID string) ([]PhotoView, error) {
	photos, err := s.photoRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	views := make([]PhotoView, 0, len(photos))
	for _, photo := range photos {
		view, err := s.buildView(ctx, &photo, userID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *catalogService) GetPhoto(ctx context.Context, photoID, userID string) (*PhotoView, error) {
	photo, err := s.getPhotoCached(ctx, photoID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, photo, userID)
}

// ResolvePhotoURL returns the delivery URL for one resolution tier. The
// original tier checks the access grant store directly; previews are
// public.
func (s *catalogService) ResolvePhotoURL(ctx context.Context, photoID, userID, resolution string) (string, error) {
	photo, err := s.getPhotoCached(ctx, photoID)
	if err != nil {
		return "", err
	}

	switch resolution {
	case media.ResolutionThumbnail:
		return s.urls.Thumbnail(photo.EventID, photo.ID), nil
	case media.ResolutionWatermarked:
		return s.urls.Watermarked(photo.EventID, photo.ID), nil
	case media.ResolutionOriginal:
		purchased, err := s.purchases.HasPurchased(ctx, userID, photoID)
		if err != nil {
			return "", err
		}
		if !purchased {
			return "", pkgerrors.ErrNotPurchased
		}
		return s.urls.Original(photo.EventID, photo.ID), nil
	default:
		return "", pkgerrors.ErrInvalidResolution
	}
}

// getPhotoCached serves photo metadata from redis when possible. Only
// immutable-ish metadata is cached; the purchase gate never is.
func (s *catalogService) getPhotoCached(ctx context.Context, photoID string) (*models.Photo, error) {
	cacheKey := fmt.Sprintf("photo:%s", photoID)
	cached, err := s.redisClient.Get(ctx, cacheKey)
	if err == nil {
		var photo models.Photo
		if uerr := json.Unmarshal([]byte(cached), &photo); uerr != nil {
			slog.Error("failed to unmarshal cached photo", "photo_id", photoID, "error", uerr)
		} else {
			return &photo, nil
		}
	} else if !stderrors.Is(err, redis.ErrKeyNotFound) {
		slog.Error("failed to get photo from Redis", "photo_id", photoID, "error", err)
	}

	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}

	if photoBytes, err := json.Marshal(photo); err == nil {
		if err := s.redisClient.Set(ctx, cacheKey, string(photoBytes), photoCacheTTL); err != nil {
			slog.Error("failed to cache photo", "photo_id", photoID, "error", err)
		}
	}
	return photo, nil
}

func (s *catalogService) buildView(ctx context.Context, photo *models.Photo, userID string) (*PhotoView, error) {
	purchased := false
	if userID != "" {
		var err error
		purchased, err = s.purchases.HasPurchased(ctx, userID, photo.ID)
		if err != nil {
			return nil, err
		}
	}

	view := &PhotoView{
		PhotoID:        photo.ID,
		EventID:        photo.EventID,
		Filename:       photo.Filename,
		ThumbnailURL:   s.urls.Thumbnail(photo.EventID, photo.ID),
		WatermarkedURL: s.urls.Watermarked(photo.EventID, photo.ID),
		Price:          photo.Price,
		IsPurchased:    purchased,
		Width:          photo.Width,
		Height:         photo.Height,
		CreatedAt:      photo.CreatedAt.Format(time.RFC3339),
	}
	if purchased {
		view.OriginalURL = s.urls.Original(photo.EventID, photo.ID)
	}
	return view, nil
}
