package repository

import (
	"time"

	"github.com/yourusername/redweb-api/internal/domain/entity"
)

// VerificationCodeRepository хранит коды подтверждения регистрации, по одному на email
type VerificationCodeRepository interface {
	// Upsert заменяет запись для email целиком: новый код, attempts=0, is_used=false
	Upsert(code *entity.VerificationCode) error
	GetByEmail(email string) (*entity.VerificationCode, error)
	// IncrementAttempts увеличивает attempts записи с кодом storedCode, только пока attempts < maxAttempts
	IncrementAttempts(email, storedCode string, maxAttempts int) (bool, error)
	// MarkUsed помечает код использованным, если он совпадает, не истек, не использован и не исчерпан
	MarkUsed(email, code string, now time.Time, maxAttempts int) (bool, error)
}
