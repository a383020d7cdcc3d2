package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/luminaphoto/lumina/internal/infrastructure/kafka"
	"github.com/luminaphoto/lumina/internal/infrastructure/redis"
	"github.com/luminaphoto/lumina/internal/models"
	"github.com/luminaphoto/lumina/internal/repository"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (string, *models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	Logout(ctx context.Context, userID string) error
	SetRole(ctx context.Context, userID, role string) error
}

type authService struct {
	userRepo      repository.UserRepository
	redisClient   redis.RedisClient
	kafkaProducer kafka.KafkaProducer
	jwtSecret     string
}

func NewAuthService(userRepo repository.UserRepository, redisClient redis.RedisClient, kafkaProducer kafka.KafkaProducer, jwtSecret string) *authService {
	return &authService{
		userRepo:      userRepo,
		redisClient:   redisClient,
		kafkaProducer: kafkaProducer,
		jwtSecret:     jwtSecret,
	}
}

func (s *authService) Register(ctx context.Context, email, password, name string) (string, *models.User, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	if email == "" || password == "" || name == "" {
		span.SetStatus(codes.Error, "missing registration fields")
		return "", nil, pkgerrors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "password hashing failed")
		slog.Error("failed to hash password", "email", email, "error", err)
		return "", nil, fmt.Errorf("%w: failed to hash password", pkgerrors.ErrInternal)
	}

	user := &models.User{
		ID:           newID("user"),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         models.RoleClient,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if stderrors.Is(err, pkgerrors.ErrEmailExists) {
			span.SetStatus(codes.Error, "email already registered")
			slog.Warn("email already registered", "email", email)
			return "", nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "user creation failed")
		slog.Error("failed to create user", "email", email, "error", err)
		return "", nil, fmt.Errorf("%w: failed to create user", pkgerrors.ErrInternal)
	}

	event := map[string]interface{}{
		"event_type": "user_registered",
		"user_id":    user.ID,
		"email":      email,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to marshal kafka event", "user_id", user.ID, "error", err)
	} else if err := s.kafkaProducer.Send(ctx, "users", user.ID, eventBytes); err != nil {
		slog.Error("failed to send user registration event", "user_id", user.ID, "error", err)
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		span.RecordError(err)
		return "", nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "email", email)
	return token, user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		slog.Error("failed to login", "email", email, "error", err)
		return "", nil, pkgerrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Error("invalid password", "email", email)
		return "", nil, pkgerrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		span.RecordError(err)
		return "", nil, err
	}

	slog.Info("user logged in", "email", email, "user_id", user.ID)
	return token, user, nil
}

func (s *authService) issueToken(ctx context.Context, user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		slog.Error("failed to generate JWT", "error", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.redisClient.Set(ctx, fmt.Sprintf("user:%s:token", user.ID), tokenString, tokenTTL); err != nil {
		slog.Error("failed to cache JWT", "user_id", user.ID, "error", err)
	}
	return tokenString, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	return s.redisClient.Del(ctx, fmt.Sprintf("user:%s:token", userID))
}

// SetRole changes a user's role and revokes their cached token so the
// new role takes effect on the next login.
func (s *authService) SetRole(ctx context.Context, userID, role string) error {
	if role != models.RoleClient && role != models.RoleAdmin {
		return pkgerrors.ErrInvalidInput
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	if err := s.redisClient.Del(ctx, fmt.Sprintf("user:%s:token", userID)); err != nil {
		slog.Error("failed to revoke token after role change", "user_id", userID, "error", err)
	}
	slog.Info("role updated", "user_id", userID, "role", role)
	return nil
}
