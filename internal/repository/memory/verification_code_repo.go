package memory

import (
	"time"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

// VerificationCodeRepo реализует repository.VerificationCodeRepository в памяти
type VerificationCodeRepo struct {
	s *Store
}

func NewVerificationCodeRepo(s *Store) *VerificationCodeRepo {
	return &VerificationCodeRepo{s: s}
}

func (r *VerificationCodeRepo) Upsert(code *entity.VerificationCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	code.Attempts = 0
	code.IsUsed = false
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	r.s.codes[code.Email] = *code
	return nil
}

func (r *VerificationCodeRepo) GetByEmail(email string) (*entity.VerificationCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	code, ok := r.s.codes[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &code, nil
}

func (r *VerificationCodeRepo) IncrementAttempts(email, storedCode string, maxAttempts int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	code, ok := r.s.codes[email]
	if !ok || code.Code != storedCode || code.Attempts >= maxAttempts {
		return false, nil
	}
	code.Attempts++
	r.s.codes[email] = code
	return true, nil
}

func (r *VerificationCodeRepo) MarkUsed(email, supplied string, now time.Time, maxAttempts int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	code, ok := r.s.codes[email]
	if !ok || code.Code != supplied || code.IsUsed || now.After(code.ExpiresAt) || code.Attempts >= maxAttempts {
		return false, nil
	}
	code.IsUsed = true
	r.s.codes[email] = code
	return true, nil
}
