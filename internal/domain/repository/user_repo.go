package repository

import (
	"time"

	"github.com/yourusername/redweb-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	UpdateProfile(userID uint, updates map[string]interface{}) error

	// SetResetCode заменяет действующий код сброса и обнуляет счетчик попыток.
	// Возвращает ErrNotFound, если аккаунта с таким email нет.
	SetResetCode(email, code string, expiresAt time.Time) error
	// IncrementResetAttempts увеличивает счетчик попыток для кода storedCode,
	// только пока он меньше maxAttempts. false означает, что строка не изменилась.
	IncrementResetAttempts(email, storedCode string, maxAttempts int) (bool, error)
	// ResetPassword одним условным обновлением сохраняет новый хеш и очищает код сброса.
	// false означает, что код уже не действует.
	ResetPassword(email, code, passwordHash string, now time.Time, maxAttempts int) (bool, error)
}
