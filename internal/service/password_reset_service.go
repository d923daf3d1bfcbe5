package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	"github.com/yourusername/redweb-api/internal/domain/repository"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
	"github.com/yourusername/redweb-api/pkg/validation"
)

// PasswordResetService выдает коды сброса пароля и меняет пароль по коду.
// Каждый шаг заново проверяет код по текущему состоянию строки пользователя.
type PasswordResetService struct {
	users  repository.UserRepository
	issuer *codeIssuer
	policy CodePolicy
	log    *zap.Logger
	now    func() time.Time
}

func NewPasswordResetService(
	users repository.UserRepository,
	cache repository.CacheRepository,
	emailService EmailService,
	policy CodePolicy,
	log *zap.Logger,
) (*PasswordResetService, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if emailService == nil {
		return nil, fmt.Errorf("email service is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	policy = policy.normalized()
	log = log.With(zap.String("component", "password_reset"))

	s := &PasswordResetService{
		users:  users,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
	s.issuer = &codeIssuer{
		cache:    cache,
		email:    emailService,
		policy:   policy,
		log:      log,
		now:      func() time.Time { return s.now() },
		generate: generateVerificationCode,
	}
	return s, nil
}

// lookup возвращает ErrNotFound без каких-либо изменений, если аккаунта нет
func (s *PasswordResetService) lookup(email string) (*entity.User, error) {
	user, err := s.users.GetByEmail(email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: user not found", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, transientError("load user", err)
	}
	return user, nil
}

// SendCode выдает код сброса для существующего аккаунта
func (s *PasswordResetService) SendCode(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if !validation.Email(email) {
		return fmt.Errorf("%w: invalid email", apperrors.ErrValidation)
	}
	if _, err := s.lookup(email); err != nil {
		return err
	}

	return s.issuer.issue(ctx, PurposePasswordReset, email, func(code string, expiresAt, _ time.Time) error {
		return s.users.SetResetCode(email, code, expiresAt)
	})
}

func (s *PasswordResetService) store(email string, accept func(now time.Time) (bool, error)) codeStore {
	return codeStore{
		load: func() (*entity.CodeCheck, error) {
			user, err := s.lookup(email)
			if err != nil {
				return nil, err
			}
			return user.ResetCheck(), nil
		},
		charge: func(storedCode string) (bool, error) {
			return s.users.IncrementResetAttempts(email, storedCode, s.policy.MaxAttempts)
		},
		accept:   accept,
		noRecord: ErrInvalidVerificationCode,
	}
}

func validateResetInput(email, code string) error {
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and code are required", apperrors.ErrValidation)
	}
	if !validation.Code(code) {
		return fmt.Errorf("%w: code must be 6 digits", apperrors.ErrValidation)
	}
	return nil
}

// VerifyCode подтверждает код сброса, не расходуя его
func (s *PasswordResetService) VerifyCode(ctx context.Context, email, code string) error {
	email = validation.NormalizeEmail(email)
	if err := validateResetInput(email, code); err != nil {
		return err
	}

	return verifyCode(s.store(email, func(time.Time) (bool, error) {
		return true, nil
	}), code, s.now, s.policy.MaxAttempts)
}

// UpdatePassword заново проверяет код и одним условным обновлением
// сохраняет новый пароль и очищает код сброса
func (s *PasswordResetService) UpdatePassword(ctx context.Context, email, code, newPassword string) error {
	email = validation.NormalizeEmail(email)
	if newPassword == "" {
		return fmt.Errorf("%w: all fields are required", apperrors.ErrValidation)
	}
	if err := validateResetInput(email, code); err != nil {
		return err
	}
	if validation.PasswordTooLong(newPassword) {
		return fmt.Errorf("%w: password must be at most %d bytes", apperrors.ErrValidation, validation.MaxPasswordBytes)
	}
	if !validation.Password(newPassword) {
		return fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, validation.MinPasswordLength)
	}

	hash, err := entity.HashPassword(newPassword)
	if err != nil {
		return transientError("hash password", err)
	}

	err = verifyCode(s.store(email, func(now time.Time) (bool, error) {
		return s.users.ResetPassword(email, code, hash, now, s.policy.MaxAttempts)
	}), code, s.now, s.policy.MaxAttempts)
	if err != nil {
		return err
	}

	s.log.Info("password reset completed")
	return nil
}
