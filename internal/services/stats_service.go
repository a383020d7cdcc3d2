package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/luminaphoto/lumina/internal/infrastructure/redis"
	"github.com/luminaphoto/lumina/internal/repository"
)

type AdminStats struct {
	TotalEvents    int64   `json:"total_events"`
	TotalPhotos    int64   `json:"total_photos"`
	TotalUsers     int64   `json:"total_users"`
	TotalPurchases int64   `json:"total_purchases"`
	TotalRevenue   float64 `json:"total_revenue"`
}

type StatsService interface {
	AdminStats(ctx context.Context) (*AdminStats, error)
}

type statsService struct {
	userRepo        repository.UserRepository
	eventRepo       repository.EventRepository
	photoRepo       repository.PhotoRepository
	purchaseRepo    repository.PurchaseRepository
	transactionRepo repository.TransactionRepository
	redisClient     redis.RedisClient
}

func NewStatsService(
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
	photoRepo repository.PhotoRepository,
	purchaseRepo repository.PurchaseRepository,
	transactionRepo repository.TransactionRepository,
	redisClient redis.RedisClient,
) *statsService {
	return &statsService{
		userRepo:        userRepo,
		eventRepo:       eventRepo,
		photoRepo:       photoRepo,
		purchaseRepo:    purchaseRepo,
		transactionRepo: transactionRepo,
		redisClient:     redisClient,
	}
}

func (s *statsService) AdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	var err error

	if stats.TotalEvents, err = s.eventRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalPhotos, err = s.photoRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalPurchases, err = s.purchaseRepo.Count(ctx); err != nil {
		return nil, err
	}

	// Revenue comes from the kafka-fed counter when available; the
	// ledger sum is the source of truth when it is not.
	if cached, err := s.redisClient.Get(ctx, "stats:revenue"); err == nil {
		if revenue, err := strconv.ParseFloat(cached, 64); err == nil {
			stats.TotalRevenue = revenue
			return stats, nil
		}
	}

	revenue, err := s.transactionRepo.SumCompletedAmount(ctx)
	if err != nil {
		slog.Error("failed to compute revenue", "error", err)
		return nil, err
	}
	stats.TotalRevenue = revenue
	return stats, nil
}
