package service

import (
	"context"
	"log/slog"

	stderrors "errors"

	"github.com/luminaphoto/lumina/internal/media"
	"github.com/luminaphoto/lumina/internal/repository"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
)

type CartItemView struct {
	PhotoID      string  `json:"photo_id"`
	EventID      string  `json:"event_id"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Price        float64 `json:"price"`
}

type CartView struct {
	Items []CartItemView `json:"items"`
	Total float64        `json:"total"`
}

type CartService interface {
	View(ctx context.Context, userID string) (*CartView, error)
	Add(ctx context.Context, userID, photoID string) error
	Remove(ctx context.Context, userID, photoID string) error
}

type cartService struct {
	cartRepo     repository.CartRepository
	photoRepo    repository.PhotoRepository
	purchaseRepo repository.PurchaseRepository
	urls         *media.URLBuilder
}

func NewCartService(
	cartRepo repository.CartRepository,
	photoRepo repository.PhotoRepository,
	purchaseRepo repository.PurchaseRepository,
	urls *media.URLBuilder,
) *cartService {
	return &cartService{
		cartRepo:     cartRepo,
		photoRepo:    photoRepo,
		purchaseRepo: purchaseRepo,
		urls:         urls,
	}
}

// View prices the cart from the live catalog. Snapshot pricing only
// happens at checkout; until then the user sees current prices.
func (s *cartService) View(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: []CartItemView{}}
	for _, photoID := range cart.PhotoIDs {
		photo, err := s.photoRepo.GetByID(ctx, photoID)
		if stderrors.Is(err, pkgerrors.ErrPhotoNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, CartItemView{
			PhotoID:      photo.ID,
			EventID:      photo.EventID,
			ThumbnailURL: s.urls.Thumbnail(photo.EventID, photo.ID),
			Price:        photo.Price,
		})
		view.Total += photo.Price
	}
	return view, nil
}

// Add rejects photos the user already owns; there is nothing to buy
// twice.
func (s *cartService) Add(ctx context.Context, userID, photoID string) error {
	if _, err := s.photoRepo.GetByID(ctx, photoID); err != nil {
		return err
	}

	purchased, err := s.purchaseRepo.Exists(ctx, userID, photoID)
	if err != nil {
		return err
	}
	if purchased {
		slog.Warn("attempt to cart an owned photo", "user_id", userID, "photo_id", photoID)
		return pkgerrors.ErrAlreadyPurchased
	}

	return s.cartRepo.AddItem(ctx, userID, photoID)
}

func (s *cartService) Remove(ctx context.Context, userID, photoID string) error {
	return s.cartRepo.RemoveItem(ctx, userID, photoID)
}
