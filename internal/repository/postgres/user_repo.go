package postgres

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/redweb-api/internal/domain/entity"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя. Нарушение уникальности username/email
// возвращается как единая ErrConflict.
func (r *UserRepo) Create(user *entity.User) error {
	return mapError(r.db.Create(user).Error)
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetByUsername возвращает пользователя по имени пользователя
func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// UpdateProfile обновляет профиль пользователя без изменения пароля и кода сброса
func (r *UserRepo) UpdateProfile(userID uint, updates map[string]interface{}) error {
	for _, protected := range []string{"password", "reset_code", "reset_expires", "reset_attempts"} {
		delete(updates, protected)
	}
	updates["updated_at"] = time.Now()

	result := r.db.Model(&entity.User{}).Where("id = ?", userID).UpdateColumns(updates)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound)
	}
	return nil
}

// SetResetCode заменяет код сброса пароля на строке пользователя
func (r *UserRepo) SetResetCode(email, code string, expiresAt time.Time) error {
	result := r.db.Model(&entity.User{}).
		Where("email = ?", email).
		UpdateColumns(map[string]interface{}{
			"reset_code":     code,
			"reset_expires":  expiresAt,
			"reset_attempts": 0,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to store reset code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound)
	}
	return nil
}

// IncrementResetAttempts атомарно увеличивает счетчик попыток, пока он ниже лимита
func (r *UserRepo) IncrementResetAttempts(email, storedCode string, maxAttempts int) (bool, error) {
	result := r.db.Model(&entity.User{}).
		Where("email = ? AND reset_code = ? AND reset_attempts < ?", email, storedCode, maxAttempts).
		UpdateColumn("reset_attempts", gorm.Expr("reset_attempts + 1"))
	if result.Error != nil {
		return false, fmt.Errorf("failed to increment reset attempts: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ResetPassword сохраняет новый хеш и очищает код сброса одним условным UPDATE.
// UpdateColumns обходит BeforeSave, поэтому хеш не хешируется повторно.
func (r *UserRepo) ResetPassword(email, code, passwordHash string, now time.Time, maxAttempts int) (bool, error) {
	result := r.db.Model(&entity.User{}).
		Where("email = ? AND reset_code = ? AND reset_expires >= ? AND reset_attempts < ?", email, code, now, maxAttempts).
		UpdateColumns(map[string]interface{}{
			"password":       passwordHash,
			"reset_code":     nil,
			"reset_expires":  nil,
			"reset_attempts": 0,
			"updated_at":     now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to reset password: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
