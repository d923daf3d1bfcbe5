package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	"github.com/yourusername/redweb-api/internal/domain/repository"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

const (
	codeMin = 100000
	codeMax = 999999

	// сколько раз verify перечитывает запись после проигранной гонки условного UPDATE
	verifyRetries = 3
)

// CodePolicy задает жизненный цикл одноразовых кодов
type CodePolicy struct {
	TTL            time.Duration
	MaxAttempts    int
	ResendInterval time.Duration // 0 отключает ограничение частоты отправки
}

// DefaultCodePolicy возвращает параметры по умолчанию: 5 минут, 5 попыток, 60 секунд
func DefaultCodePolicy() CodePolicy {
	return CodePolicy{TTL: 5 * time.Minute, MaxAttempts: 5, ResendInterval: 60 * time.Second}
}

func (p CodePolicy) normalized() CodePolicy {
	def := DefaultCodePolicy()
	if p.TTL <= 0 {
		p.TTL = def.TTL
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.ResendInterval < 0 {
		p.ResendInterval = 0
	}
	return p
}

// generateVerificationCode возвращает равномерно распределенный код в [100000, 999999]
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

func transientError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrTransient, err)
}

// codeIssuer выдает коды для обоих потоков: ограничение частоты, генерация,
// сохранение с заменой и доставка.
type codeIssuer struct {
	cache    repository.CacheRepository
	email    EmailService
	policy   CodePolicy
	log      *zap.Logger
	now      func() time.Time
	generate func() (string, error)
}

func cooldownKey(purpose CodePurpose, email string) string {
	return fmt.Sprintf("verify:cooldown:%s:%s", purpose, email)
}

// acquireCooldown занимает окно отправки. Ошибки кеша не блокируют отправку.
func (i *codeIssuer) acquireCooldown(purpose CodePurpose, email string) error {
	if i.policy.ResendInterval <= 0 || i.cache == nil {
		return nil
	}
	ok, err := i.cache.SetNX(cooldownKey(purpose, email), i.now().Unix(), i.policy.ResendInterval)
	if err != nil {
		i.log.Warn("resend cooldown check failed, allowing send",
			zap.String("purpose", string(purpose)), zap.Error(err))
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: please wait before requesting a new code", ErrVerificationResendCooldown)
	}
	return nil
}

func (i *codeIssuer) releaseCooldown(purpose CodePurpose, email string) {
	if i.policy.ResendInterval <= 0 || i.cache == nil {
		return
	}
	if err := i.cache.Delete(cooldownKey(purpose, email)); err != nil {
		i.log.Warn("failed to release resend cooldown", zap.String("purpose", string(purpose)), zap.Error(err))
	}
}

// issue выдает новый код. persist должен заменить любой предыдущий код для email.
func (i *codeIssuer) issue(
	ctx context.Context,
	purpose CodePurpose,
	email string,
	persist func(code string, expiresAt time.Time, now time.Time) error,
) error {
	if err := i.acquireCooldown(purpose, email); err != nil {
		return err
	}

	code, err := i.generate()
	if err != nil {
		i.releaseCooldown(purpose, email)
		return transientError("generate code", err)
	}

	now := i.now()
	if err := persist(code, now.Add(i.policy.TTL), now); err != nil {
		i.releaseCooldown(purpose, email)
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return transientError("persist code", err)
	}

	msg := ComposeCodeMessage(purpose, code, i.policy.TTL)
	idempotencyKey := fmt.Sprintf("%s:%s", purpose, uuid.NewString())
	if err := i.email.SendCode(ctx, email, msg, idempotencyKey); err != nil {
		i.releaseCooldown(purpose, email)
		i.log.Error("code stored but email delivery failed",
			zap.String("purpose", string(purpose)), zap.Error(err))
		return fmt.Errorf("%w: %w: %v", ErrEmailDelivery, apperrors.ErrTransient, err)
	}

	i.log.Info("verification code issued", zap.String("purpose", string(purpose)))
	return nil
}

// codeStore описывает, как поток хранит свой код
type codeStore struct {
	// load возвращает текущий код или nil, если живого кода нет
	load func() (*entity.CodeCheck, error)
	// charge условно увеличивает счетчик попыток для кода storedCode
	charge func(storedCode string) (bool, error)
	// accept условно применяет совпавший код; false означает, что запись изменилась
	accept func(now time.Time) (bool, error)
	// noRecord - ошибка для состояния NoRecord
	noRecord error
}

// verifyCode проверяет код по фиксированному порядку состояний.
// Проигранная гонка условного UPDATE приводит к перечитыванию записи.
func verifyCode(store codeStore, supplied string, now func() time.Time, maxAttempts int) error {
	for attempt := 0; attempt < verifyRetries; attempt++ {
		check, err := store.load()
		if err != nil {
			return err
		}

		ts := now()
		switch entity.EvaluateCode(check, supplied, ts, maxAttempts) {
		case entity.CodeNoRecord:
			return store.noRecord
		case entity.CodeExpired:
			return ErrVerificationExpired
		case entity.CodeConsumed:
			return ErrVerificationCodeConsumed
		case entity.CodeExhausted:
			return ErrVerificationAttemptsExceeded
		case entity.CodePending:
			charged, err := store.charge(check.Code)
			if err != nil {
				return transientError("increment attempts", err)
			}
			if charged {
				return ErrInvalidVerificationCode
			}
		case entity.CodeValid:
			accepted, err := store.accept(ts)
			if err != nil {
				return transientError("accept code", err)
			}
			if accepted {
				return nil
			}
		}
	}
	return ErrInvalidVerificationCode
}
