package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	stderrors "errors"

	"github.com/luminaphoto/lumina/internal/infrastructure/kafka"
	"github.com/luminaphoto/lumina/internal/infrastructure/payment"
	"github.com/luminaphoto/lumina/internal/media"
	"github.com/luminaphoto/lumina/internal/models"
	"github.com/luminaphoto/lumina/internal/repository"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const checkoutCurrency = "eur"

type CheckoutRedirect struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// CheckoutStatusView pairs the provider's payment status with the price
// snapshot the session was opened at. Amounts always come from the
// snapshot, never from current catalog prices.
type CheckoutStatusView struct {
	SessionID     string                `json:"session_id"`
	Status        string                `json:"status"`
	PaymentStatus string                `json:"payment_status"`
	Total         float64               `json:"total"`
	Currency      string                `json:"currency"`
	Items         []models.SnapshotItem `json:"items"`
}

type PurchaseView struct {
	PurchaseID   string `json:"purchase_id"`
	PhotoID      string `json:"photo_id"`
	EventID      string `json:"event_id"`
	Filename     string `json:"filename"`
	ThumbnailURL string `json:"thumbnail_url"`
	OriginalURL  string `json:"original_url"`
	PurchasedAt  string `json:"purchased_at"`
}

type CheckoutService interface {
	StartCheckout(ctx context.Context, userID, originURL string) (*CheckoutRedirect, error)
	ReconcileByPoll(ctx context.Context, userID, sessionID string) (*CheckoutStatusView, error)
	ReconcileByCallback(ctx context.Context, payload []byte, signature string) error
	HasPurchased(ctx context.Context, userID, photoID string) (bool, error)
	ListPurchases(ctx context.Context, userID string) ([]PurchaseView, error)
}

type checkoutService struct {
	cartRepo        repository.CartRepository
	photoRepo       repository.PhotoRepository
	sessionRepo     repository.CheckoutSessionRepository
	transactionRepo repository.TransactionRepository
	purchaseRepo    repository.PurchaseRepository
	provider        payment.Provider
	kafkaProducer   kafka.KafkaProducer
	urls            *media.URLBuilder
	providerTimeout time.Duration
}

func NewCheckoutService(
	cartRepo repository.CartRepository,
	photoRepo repository.PhotoRepository,
	sessionRepo repository.CheckoutSessionRepository,
	transactionRepo repository.TransactionRepository,
	purchaseRepo repository.PurchaseRepository,
	provider payment.Provider,
	kafkaProducer kafka.KafkaProducer,
	urls *media.URLBuilder,
	providerTimeout time.Duration,
) *checkoutService {
	return &checkoutService{
		cartRepo:        cartRepo,
		photoRepo:       photoRepo,
		sessionRepo:     sessionRepo,
		transactionRepo: transactionRepo,
		purchaseRepo:    purchaseRepo,
		provider:        provider,
		kafkaProducer:   kafkaProducer,
		urls:            urls,
		providerTimeout: providerTimeout,
	}
}

// StartCheckout snapshots the cart at current catalog prices, opens a
// provider session for the total and persists the pending transaction.
// The cart itself is not touched; it is deleted only when the payment
// reconciles. Nothing is persisted if the provider call fails, so a
// retry simply creates a fresh session.
func (s *checkoutService) StartCheckout(ctx context.Context, userID, originURL string) (*CheckoutRedirect, error) {
	tracer := otel.Tracer("checkout-service")
	ctx, span := tracer.Start(ctx, "StartCheckout")
	span.SetAttributes(attribute.String("user_id", userID))
	defer span.End()

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load cart")
		slog.Error("failed to load cart", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.PhotoIDs) == 0 {
		span.SetStatus(codes.Error, "cart is empty")
		return nil, pkgerrors.ErrEmptyCart
	}

	// Price snapshot: unit prices are fixed here and never recomputed.
	// A photo deleted since it was carted is skipped, not an error.
	var items []models.SnapshotItem
	var lineItems []payment.LineItem
	total := 0.0
	for _, photoID := range cart.PhotoIDs {
		price, err := s.photoRepo.GetPrice(ctx, photoID)
		if stderrors.Is(err, pkgerrors.ErrPhotoNotFound) {
			slog.Warn("carted photo no longer exists, skipping", "user_id", userID, "photo_id", photoID)
			continue
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to price cart")
			return nil, fmt.Errorf("failed to price cart: %w", err)
		}
		items = append(items, models.SnapshotItem{PhotoID: photoID, UnitPrice: price})
		lineItems = append(lineItems, payment.LineItem{Name: photoID, UnitPrice: price})
		total += price
	}
	if len(items) == 0 || total <= 0 {
		span.SetStatus(codes.Error, "cart is empty")
		return nil, pkgerrors.ErrEmptyCart
	}

	photoIDs := make([]string, 0, len(items))
	for _, item := range items {
		photoIDs = append(photoIDs, item.PhotoID)
	}

	providerCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()
	sess, err := s.provider.CreateSession(providerCtx, payment.SessionRequest{
		Amount:     total,
		Currency:   checkoutCurrency,
		SuccessURL: originURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  originURL + "/cart",
		Metadata: map[string]string{
			"user_id":   userID,
			"photo_ids": strings.Join(photoIDs, ","),
		},
		Items: lineItems,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider session creation failed")
		slog.Error("provider session creation failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("provider session creation failed: %w", err)
	}

	if err := s.sessionRepo.Create(ctx, &models.CheckoutSession{
		SessionID: sess.SessionID,
		UserID:    userID,
		Items:     items,
		Total:     total,
		Currency:  checkoutCurrency,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist checkout session")
		return nil, err
	}

	if err := s.transactionRepo.Create(ctx, &models.PaymentTransaction{
		ID:        newID("txn"),
		SessionID: sess.SessionID,
		UserID:    userID,
		PhotoIDs:  photoIDs,
		Amount:    total,
		Currency:  checkoutCurrency,
		Status:    models.StatusPending,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist transaction")
		return nil, err
	}

	slog.Info("checkout started", "user_id", userID, "session_id", sess.SessionID, "amount", total, "items", len(items))
	return &CheckoutRedirect{URL: sess.URL, SessionID: sess.SessionID}, nil
}

// ReconcileByPoll resolves a session on behalf of the user who owns it.
// The caller's id must match the transaction's owner; a mismatch is
// indistinguishable from an unknown session so session ids cannot be
// probed.
func (s *checkoutService) ReconcileByPoll(ctx context.Context, userID, sessionID string) (*CheckoutStatusView, error) {
	tracer := otel.Tracer("checkout-service")
	ctx, span := tracer.Start(ctx, "ReconcileByPoll")
	span.SetAttributes(attribute.String("session_id", sessionID))
	defer span.End()

	tx, err := s.transactionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction lookup failed")
		return nil, err
	}
	if tx.UserID != userID {
		span.SetStatus(codes.Error, "session owner mismatch")
		slog.Warn("poll for foreign session rejected", "session_id", sessionID, "caller", userID, "owner", tx.UserID)
		return nil, pkgerrors.ErrUnknownSession
	}

	providerCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()
	status, err := s.provider.GetStatus(providerCtx, sessionID)
	if err != nil {
		// A timeout or transport failure is never "paid"; the caller
		// retries, or the webhook resolves the session.
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider status query failed")
		return nil, fmt.Errorf("provider status query failed: %w", err)
	}

	if err := s.reconcile(ctx, sessionID, status.PaymentStatus); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconciliation failed")
		return nil, err
	}

	snapshot, err := s.sessionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot lookup failed")
		return nil, err
	}

	return &CheckoutStatusView{
		SessionID:     sessionID,
		Status:        status.Status,
		PaymentStatus: status.PaymentStatus,
		Total:         snapshot.Total,
		Currency:      snapshot.Currency,
		Items:         snapshot.Items,
	}, nil
}

// ReconcileByCallback resolves a session from a provider push. The
// payload is authenticated before anything else; an unverifiable
// callback changes no state.
func (s *checkoutService) ReconcileByCallback(ctx context.Context, payload []byte, signature string) error {
	tracer := otel.Tracer("checkout-service")
	ctx, span := tracer.Start(ctx, "ReconcileByCallback")
	defer span.End()

	result, err := s.provider.VerifyCallback(payload, signature)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "callback verification failed")
		slog.Warn("callback verification failed", "error", err)
		if stderrors.Is(err, pkgerrors.ErrCallbackAuthenticity) {
			return err
		}
		return fmt.Errorf("%w: %v", pkgerrors.ErrCallbackAuthenticity, err)
	}

	if result.SessionID == "" {
		// Verified event that carries no checkout session.
		return nil
	}

	span.SetAttributes(attribute.String("session_id", result.SessionID))
	if err := s.reconcile(ctx, result.SessionID, result.PaymentStatus); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconciliation failed")
		return err
	}
	return nil
}

// reconcile is the shared state machine behind both triggers. Both may
// run concurrently on different machines for the same session; the only
// coordination point is the conditional pending->completed write, which
// exactly one invocation wins. Everything the winner does afterwards is
// idempotent, so a crash mid-materialization is recovered by redelivery.
func (s *checkoutService) reconcile(ctx context.Context, sessionID, paymentStatus string) error {
	tx, err := s.transactionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}

	// Already completed: success without re-running materialization.
	if tx.Status == models.StatusCompleted {
		return nil
	}

	// Not yet paid is a normal result, not an error.
	if paymentStatus != payment.PaymentStatusPaid {
		return nil
	}

	won, err := s.transactionRepo.MarkCompleted(ctx, sessionID)
	if err != nil {
		return err
	}
	if !won {
		// Another trigger got there first; it owns materialization.
		slog.Info("reconcile lost completion race", "session_id", sessionID)
		return nil
	}

	return s.materialize(ctx, tx)
}

// materialize turns a completed transaction into durable access grants.
// Every write is idempotent: purchase upserts skip existing (user, photo)
// grants and deleting an absent cart is a no-op.
func (s *checkoutService) materialize(ctx context.Context, tx *models.PaymentTransaction) error {
	now := time.Now().UTC()
	for _, photoID := range tx.PhotoIDs {
		created, err := s.purchaseRepo.Upsert(ctx, &models.Purchase{
			ID:          newID("purch"),
			PhotoID:     photoID,
			UserID:      tx.UserID,
			SessionID:   tx.SessionID,
			PurchasedAt: now,
		})
		if err != nil {
			slog.Error("failed to grant purchase", "session_id", tx.SessionID, "user_id", tx.UserID, "photo_id", photoID, "error", err)
			return fmt.Errorf("failed to grant purchase: %w", err)
		}
		if !created {
			slog.Info("purchase already granted, skipping", "user_id", tx.UserID, "photo_id", photoID)
		}
	}

	if err := s.cartRepo.Delete(ctx, tx.UserID); err != nil {
		slog.Error("failed to clear cart", "session_id", tx.SessionID, "user_id", tx.UserID, "error", err)
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	event := kafka.PaymentEvent{
		EventType:   "payment_completed",
		SessionID:   tx.SessionID,
		UserID:      tx.UserID,
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		PhotoCount:  len(tx.PhotoIDs),
		CompletedAt: now.Format(time.RFC3339),
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal payment event", "session_id", tx.SessionID, "error", err)
	} else if err := s.kafkaProducer.Send(ctx, "payments", tx.SessionID, eventBytes); err != nil {
		// Best effort: the stats read model falls back to SQL.
		slog.Error("failed to send payment event", "session_id", tx.SessionID, "error", err)
	}

	slog.Info("payment reconciled", "session_id", tx.SessionID, "user_id", tx.UserID, "amount", tx.Amount, "photos", len(tx.PhotoIDs))
	return nil
}

// HasPurchased gates full-resolution delivery and reads the store
// directly; a stale cache here would release paid content early or late.
func (s *checkoutService) HasPurchased(ctx context.Context, userID, photoID string) (bool, error) {
	return s.purchaseRepo.Exists(ctx, userID, photoID)
}

func (s *checkoutService) ListPurchases(ctx context.Context, userID string) ([]PurchaseView, error) {
	purchases, err := s.purchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("failed to list purchases", "user_id", userID, "error", err)
		return nil, err
	}

	views := make([]PurchaseView, 0, len(purchases))
	for _, p := range purchases {
		photo, err := s.photoRepo.GetByID(ctx, p.PhotoID)
		if stderrors.Is(err, pkgerrors.ErrPhotoNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, PurchaseView{
			PurchaseID:   p.ID,
			PhotoID:      p.PhotoID,
			EventID:      photo.EventID,
			Filename:     photo.Filename,
			ThumbnailURL: s.urls.Thumbnail(photo.EventID, p.PhotoID),
			OriginalURL:  s.urls.Original(photo.EventID, p.PhotoID),
			PurchasedAt:  p.PurchasedAt.Format(time.RFC3339),
		})
	}
	return views, nil
}
