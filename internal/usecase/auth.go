package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillforge-backend/internal/domain"
	"skillforge-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type authUsecase struct {
	userRepo domain.UserRepository
	logger   *zap.Logger
}

func NewAuthUsecase(ur domain.UserRepository, logger *zap.Logger) domain.AuthUsecase {
	return &authUsecase{userRepo: ur, logger: logger}
}

func (uc *authUsecase) Register(ctx context.Context, user *domain.User) error {
	existing, err := uc.userRepo.GetByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if existing != nil {
		return fmt.Errorf("email %s already registered: %w", user.Email, domain.ErrConflict)
	}

	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user.ID = uuid.NewString()
	user.Password = hashed
	if user.Role == "" {
		user.Role = domain.RoleStudent
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return err
	}

	go utils.SendEmail(user.Email, "Welcome to SkillForge", "Your account is ready. Happy learning!")
	return nil
}

func (uc *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("invalid credentials: %w", domain.ErrForbidden)
		}
		return "", err
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", fmt.Errorf("invalid credentials: %w", domain.ErrForbidden)
	}

	uc.updateStreak(ctx, user)

	token, err := utils.GenerateJWT(user.ID, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return token, nil
}

// updateStreak applies the daily login streak rules: same calendar day keeps
// the streak, the next day extends it, any longer gap resets it to 1. Streak
// bookkeeping never fails a login.
func (uc *authUsecase) updateStreak(ctx context.Context, user *domain.User) {
	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	current := user.CurrentStreak
	switch {
	case user.LastLoginDate.IsZero():
		current = 1
	default:
		last := user.LastLoginDate.UTC().Truncate(24 * time.Hour)
		days := int(today.Sub(last).Hours() / 24)
		switch {
		case days == 0:
			// Already logged in today.
		case days == 1:
			current++
		default:
			current = 1
		}
	}

	longest := user.LongestStreak
	if current > longest {
		longest = current
	}

	if err := uc.userRepo.UpdateStreak(ctx, user.ID, current, longest, now); err != nil {
		uc.logger.Warn("streak update failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	user.CurrentStreak = current
	user.LongestStreak = longest
	user.LastLoginDate = now
}

func (uc *authUsecase) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
