package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"merchantdash/internal/config"
	"merchantdash/internal/infrastructure/lock"
	"merchantdash/internal/model"
	"merchantdash/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrWrongPassword = errors.New("current password is incorrect")
	ErrMFAInvalid    = errors.New("verification code is invalid or expired")
	ErrBusy          = errors.New("another change is in progress, try again")
)

const (
	MFAPurposePassword = "password"
	MFAPurposePhone    = "phone"
)

type AccountService struct {
	db          *gorm.DB
	redisClient *redis.Client
	cfg         *config.Config
	userRepo    *repository.UserRepository
	outboxRepo  *repository.OutboxRepository
	logger      *zap.Logger
}

func NewAccountService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *zap.Logger) *AccountService {
	return &AccountService{
		db:          db,
		redisClient: redisClient,
		cfg:         cfg,
		userRepo:    repository.NewUserRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
		logger:      logger,
	}
}

// RequestMFACode issues a one-time code for the given change purpose. The
// code is stored with a TTL and delivered out of band (SMS/email); only the
// request id goes back to the client.
func (s *AccountService) RequestMFACode(ctx context.Context, userID int64, purpose string) (string, error) {
	if purpose != MFAPurposePassword && purpose != MFAPurposePhone {
		return "", fmt.Errorf("unknown MFA purpose: %s", purpose)
	}

	code, err := generateMFACode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	ttl := time.Duration(s.cfg.Auth.MFACodeTTLMinutes) * time.Minute
	if err := s.redisClient.Set(ctx, mfaKey(userID, purpose), code, ttl).Err(); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}

	requestID := uuid.NewString()
	s.logger.Info("MFA code issued",
		zap.Int64("user_id", userID),
		zap.String("purpose", purpose),
		zap.String("request_id", requestID))

	return requestID, nil
}

// ChangePassword verifies the old password and the MFA code, then swaps the
// hash and writes an audit event in the same transaction. A per-user lock
// keeps two concurrent change requests from consuming the same code.
func (s *AccountService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword, mfaCode string) error {
	changeLock := lock.NewAccountChangeLock(s.redisClient, userID, uuid.NewString())
	if err := changeLock.Lock(ctx, 100*time.Millisecond, 10); err != nil {
		return ErrBusy
	}
	defer changeLock.Unlock(ctx)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrWrongPassword
	}

	if err := s.consumeMFACode(ctx, userID, MFAPurposePassword, mfaCode); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.UpdatePasswordHash(ctx, tx, userID, string(hash)); err != nil {
			return err
		}
		payload, _ := json.Marshal(map[string]interface{}{
			"user_id":    userID,
			"changed_at": time.Now().Format(time.RFC3339),
		})
		return s.outboxRepo.CreateEvent(ctx, tx,
			model.EventPasswordChanged,
			fmt.Sprintf("user-%d", userID),
			s.cfg.Kafka.Topic.AccountAudit,
			string(payload))
	})
	if err != nil {
		return err
	}

	s.logger.Info("password changed", zap.Int64("user_id", userID))
	return nil
}

// ChangePhone swaps the contact phone after MFA verification.
func (s *AccountService) ChangePhone(ctx context.Context, userID int64, newPhone, mfaCode string) error {
	changeLock := lock.NewAccountChangeLock(s.redisClient, userID, uuid.NewString())
	if err := changeLock.Lock(ctx, 100*time.Millisecond, 10); err != nil {
		return ErrBusy
	}
	defer changeLock.Unlock(ctx)

	if err := s.consumeMFACode(ctx, userID, MFAPurposePhone, mfaCode); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.UpdatePhone(ctx, tx, userID, newPhone); err != nil {
			return err
		}
		payload, _ := json.Marshal(map[string]interface{}{
			"user_id":    userID,
			"changed_at": time.Now().Format(time.RFC3339),
		})
		return s.outboxRepo.CreateEvent(ctx, tx,
			model.EventPhoneChanged,
			fmt.Sprintf("user-%d", userID),
			s.cfg.Kafka.Topic.AccountAudit,
			string(payload))
	})
	if err != nil {
		return err
	}

	s.logger.Info("phone changed", zap.Int64("user_id", userID))
	return nil
}

// consumeMFACode compares and deletes the stored code atomically, so a code
// can be used at most once even under races.
func (s *AccountService) consumeMFACode(ctx context.Context, userID int64, purpose, code string) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	result, err := s.redisClient.Eval(ctx, script, []string{mfaKey(userID, purpose)}, code).Int64()
	if err != nil {
		return fmt.Errorf("verify code: %w", err)
	}
	if result == 0 {
		return ErrMFAInvalid
	}
	return nil
}

func mfaKey(userID int64, purpose string) string {
	return fmt.Sprintf("dashboard:mfa:%s:%d", purpose, userID)
}

func generateMFACode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
