package postgres

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/redweb-api/internal/domain/entity"
)

// VerificationCodeRepo реализует repository.VerificationCodeRepository
type VerificationCodeRepo struct {
	db *gorm.DB
}

func NewVerificationCodeRepo(db *gorm.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: db}
}

// Upsert заменяет запись для email одним INSERT ... ON CONFLICT
func (r *VerificationCodeRepo) Upsert(code *entity.VerificationCode) error {
	code.Attempts = 0
	code.IsUsed = false
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"code", "expires_at", "attempts", "is_used", "last_sent_at", "created_at",
		}),
	}).Create(code).Error
	if err != nil {
		return fmt.Errorf("failed to upsert verification code: %w", err)
	}
	return nil
}

func (r *VerificationCodeRepo) GetByEmail(email string) (*entity.VerificationCode, error) {
	var code entity.VerificationCode
	if err := r.db.Where("email = ?", email).First(&code).Error; err != nil {
		return nil, mapError(err)
	}
	return &code, nil
}

func (r *VerificationCodeRepo) IncrementAttempts(email, storedCode string, maxAttempts int) (bool, error) {
	result := r.db.Model(&entity.VerificationCode{}).
		Where("email = ? AND code = ? AND attempts < ?", email, storedCode, maxAttempts).
		UpdateColumn("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return false, fmt.Errorf("failed to increment attempts: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *VerificationCodeRepo) MarkUsed(email, code string, now time.Time, maxAttempts int) (bool, error) {
	result := r.db.Model(&entity.VerificationCode{}).
		Where("email = ? AND code = ? AND is_used = ? AND expires_at >= ? AND attempts < ?",
			email, code, false, now, maxAttempts).
		UpdateColumn("is_used", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark code used: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
