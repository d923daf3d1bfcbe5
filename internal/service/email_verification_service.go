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

// EmailVerificationService выдает и проверяет коды подтверждения регистрации
type EmailVerificationService struct {
	codes  repository.VerificationCodeRepository
	issuer *codeIssuer
	policy CodePolicy
	log    *zap.Logger
	now    func() time.Time
}

func NewEmailVerificationService(
	codes repository.VerificationCodeRepository,
	cache repository.CacheRepository,
	emailService EmailService,
	policy CodePolicy,
	log *zap.Logger,
) (*EmailVerificationService, error) {
	if codes == nil {
		return nil, fmt.Errorf("verification code repository is required")
	}
	if emailService == nil {
		return nil, fmt.Errorf("email service is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	policy = policy.normalized()
	log = log.With(zap.String("component", "email_verification"))

	s := &EmailVerificationService{
		codes:  codes,
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

// SendCode выдает новый код регистрации, заменяя предыдущий
func (s *EmailVerificationService) SendCode(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if !validation.Email(email) {
		return fmt.Errorf("%w: invalid email", apperrors.ErrValidation)
	}

	return s.issuer.issue(ctx, PurposeRegistration, email, func(code string, expiresAt, now time.Time) error {
		return s.codes.Upsert(&entity.VerificationCode{
			Email:      email,
			Code:       code,
			ExpiresAt:  expiresAt,
			LastSentAt: now,
		})
	})
}

// VerifyCode проверяет код и при совпадении помечает его использованным.
// Использованный код больше не принимается.
func (s *EmailVerificationService) VerifyCode(ctx context.Context, email, code string) error {
	email = validation.NormalizeEmail(email)
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and code are required", apperrors.ErrValidation)
	}
	if !validation.Code(code) {
		return fmt.Errorf("%w: code must be 6 digits", apperrors.ErrValidation)
	}

	err := verifyCode(codeStore{
		load: func() (*entity.CodeCheck, error) {
			record, err := s.codes.GetByEmail(email)
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, transientError("load verification code", err)
			}
			return record.Check(), nil
		},
		charge: func(storedCode string) (bool, error) {
			return s.codes.IncrementAttempts(email, storedCode, s.policy.MaxAttempts)
		},
		accept: func(now time.Time) (bool, error) {
			return s.codes.MarkUsed(email, code, now, s.policy.MaxAttempts)
		},
		noRecord: ErrCodeNotFound,
	}, code, s.now, s.policy.MaxAttempts)

	if err != nil {
		s.log.Info("registration code rejected", zap.String("reason", err.Error()))
		return err
	}
	return nil
}

// IsVerified сообщает, подтвержден ли email использованным кодом регистрации
func (s *EmailVerificationService) IsVerified(email string) (bool, error) {
	record, err := s.codes.GetByEmail(validation.NormalizeEmail(email))
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, transientError("load verification code", err)
	}
	return record.IsUsed, nil
}
