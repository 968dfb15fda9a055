package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"merchantdash/internal/config"
	"merchantdash/internal/hierarchy"
	"merchantdash/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid merchant code, email or password")
	ErrSessionExpired     = errors.New("session expired")
)

// Session is the authenticated dashboard context stored in redis. The two
// permission flags feed the action-visibility rules untouched.
type Session struct {
	Token        string    `json:"token"`
	UserID       int64     `json:"user_id"`
	MerchantID   string    `json:"merchant_id"`
	MerchantCode string    `json:"merchant_code"`
	Email        string    `json:"email"`
	CanRefund    bool      `json:"can_refund"`
	HasPreAuth   bool      `json:"has_pre_auth"`
	LoggedInAt   time.Time `json:"logged_in_at"`
}

type AuthService struct {
	redisClient *redis.Client
	cfg         *config.Config
	userRepo    *repository.UserRepository
	hierarchy   *hierarchy.Store
	workspaces  *WorkspaceRegistry
	logger      *zap.Logger
}

func NewAuthService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, hier *hierarchy.Store, workspaces *WorkspaceRegistry, logger *zap.Logger) *AuthService {
	return &AuthService{
		redisClient: redisClient,
		cfg:         cfg,
		userRepo:    repository.NewUserRepository(db),
		hierarchy:   hier,
		workspaces:  workspaces,
		logger:      logger,
	}
}

// Login checks credentials and opens a session. Unlike background loads,
// login failures propagate to the caller so the UI can react immediately.
func (s *AuthService) Login(ctx context.Context, merchantCode, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.MerchantCode != merchantCode {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session := &Session{
		Token:        uuid.NewString(),
		UserID:       user.ID,
		MerchantID:   user.MerchantID,
		MerchantCode: user.MerchantCode,
		Email:        user.Email,
		CanRefund:    user.CanRefund,
		HasPreAuth:   user.HasPreAuth,
		LoggedInAt:   time.Now(),
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(s.cfg.Auth.SessionTTLMinutes) * time.Minute
	if err := s.redisClient.Set(ctx, sessionKey(session.Token), raw, ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID, session.LoggedInAt); err != nil {
		s.logger.Warn("failed to record login time", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.String("merchant_id", user.MerchantID))

	return session, nil
}

// GetSession resolves a bearer token.
func (s *AuthService) GetSession(ctx context.Context, token string) (*Session, error) {
	raw, err := s.redisClient.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Logout drops the session, its workspace, and the hierarchy cache.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.redisClient.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.workspaces.Drop(token)
	s.hierarchy.Reset(ctx)

	return nil
}

func sessionKey(token string) string {
	return "dashboard:session:" + token
}
