package entity

import (
	"crypto/subtle"
	"time"
)

// VerificationCode хранит код подтверждения регистрации.
// На один email существует не более одной записи: новая отправка заменяет старую.
type VerificationCode struct {
	Email      string    `gorm:"primaryKey;size:100" json:"email"`
	Code       string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	Attempts   int       `gorm:"not null;default:0" json:"attempts"`
	IsUsed     bool      `gorm:"not null;default:false" json:"is_used"`
	LastSentAt time.Time `gorm:"not null" json:"last_sent_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

// Check возвращает состояние записи в виде, общем для обоих потоков
func (v *VerificationCode) Check() *CodeCheck {
	if v == nil {
		return nil
	}
	return &CodeCheck{
		Code:      v.Code,
		ExpiresAt: v.ExpiresAt,
		Attempts:  v.Attempts,
		Used:      v.IsUsed,
	}
}

// CodeState - состояние выданного кода для пары (email, поток)
type CodeState string

const (
	CodeNoRecord  CodeState = "no_record"
	CodePending   CodeState = "pending"
	CodeExpired   CodeState = "expired"
	CodeExhausted CodeState = "exhausted"
	CodeValid     CodeState = "valid"
	CodeConsumed  CodeState = "consumed"
)

// CodeCheck - представление выданного кода, не зависящее от того,
// хранится он в verification_codes или в строке users.
type CodeCheck struct {
	Code      string
	ExpiresAt time.Time
	Attempts  int
	Used      bool
}

// Status возвращает состояние самой записи без сравнения кода.
// Порядок проверок фиксирован: истечение, использование, попытки.
func (c *CodeCheck) Status(now time.Time, maxAttempts int) CodeState {
	if c == nil {
		return CodeNoRecord
	}
	if now.After(c.ExpiresAt) {
		return CodeExpired
	}
	if c.Used {
		return CodeConsumed
	}
	if c.Attempts >= maxAttempts {
		return CodeExhausted
	}
	return CodePending
}

// EvaluateCode сравнивает присланный код с записью.
// CodePending в ответе означает несовпадение: запись остается ожидающей.
func EvaluateCode(c *CodeCheck, supplied string, now time.Time, maxAttempts int) CodeState {
	state := c.Status(now, maxAttempts)
	if state != CodePending {
		return state
	}
	if subtle.ConstantTimeCompare([]byte(c.Code), []byte(supplied)) != 1 {
		return CodePending
	}
	return CodeValid
}
