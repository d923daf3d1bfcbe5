package entity

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User представляет аккаунт игрока
type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email         string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password      string     `gorm:"size:100;not null" json:"-"`
	Bio           string     `gorm:"type:text;not null;default:''" json:"bio"`
	ResetCode     *string    `gorm:"size:6" json:"-"`
	ResetExpires  *time.Time `gorm:"type:timestamptz" json:"-"`
	ResetAttempts int        `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser - минимальная идентичность, которую видит клиент после входа
type PublicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// Public возвращает публичное представление пользователя
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// BeforeSave хеширует пароль перед сохранением, только если он не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !IsPasswordHash(u.Password) {
		hashedPassword, err := HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashedPassword
	}
	return nil
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// ResetCheck возвращает состояние кода сброса пароля в виде, общем для обоих потоков.
// nil означает, что живого кода нет.
func (u *User) ResetCheck() *CodeCheck {
	if u.ResetCode == nil || *u.ResetCode == "" || u.ResetExpires == nil {
		return nil
	}
	return &CodeCheck{
		Code:      *u.ResetCode,
		ExpiresAt: *u.ResetExpires,
		Attempts:  u.ResetAttempts,
	}
}

// HashPassword хеширует пароль через bcrypt со стандартной стоимостью
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// IsPasswordHash сообщает, похожа ли строка на bcrypt-хеш ($2a$, $2b$, $2y$)
func IsPasswordHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
