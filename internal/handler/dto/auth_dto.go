package dto

import "time"

// RegisterRequest представляет запрос на регистрацию
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,max=72"`
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// EmailRequest - запрос на отправку кода
type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyCodeRequest - запрос на проверку кода
type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// UpdatePasswordRequest - запрос на смену пароля по коду сброса
type UpdatePasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,max=72"`
}

// UpdateProfileRequest - запрос на изменение профиля
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Email    string `json:"email" binding:"required"`
	Bio      string `json:"bio"`
}

// MessageResponse - ответ с сообщением для пользователя
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse - публичные данные пользователя
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileResponse - профиль текущего пользователя
type ProfileResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse - подтвержденная сервером сессия
type SessionResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}
