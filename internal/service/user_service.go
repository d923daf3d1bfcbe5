package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	"github.com/yourusername/redweb-api/internal/domain/repository"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
	"github.com/yourusername/redweb-api/pkg/validation"
)

const maxBioLength = 2000

// ProfileInput - редактируемые поля профиля
type ProfileInput struct {
	Username string
	Email    string
	Bio      string
}

// UserService предоставляет методы для работы с профилем пользователя
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile возвращает профиль пользователя
func (s *UserService) GetProfile(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile обновляет username, email и bio. Пароль здесь не меняется.
func (s *UserService) UpdateProfile(userID uint, input ProfileInput) (*entity.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = validation.NormalizeEmail(input.Email)

	if input.Username == "" {
		return nil, fmt.Errorf("%w: username is required", apperrors.ErrValidation)
	}
	if !validation.Email(input.Email) {
		return nil, fmt.Errorf("%w: invalid email", apperrors.ErrValidation)
	}
	if utf8.RuneCountInString(input.Bio) > maxBioLength {
		return nil, fmt.Errorf("%w: bio is too long", apperrors.ErrValidation)
	}

	err := s.userRepo.UpdateProfile(userID, map[string]interface{}{
		"username": input.Username,
		"email":    input.Email,
		"bio":      input.Bio,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: email or username taken", apperrors.ErrConflict)
		}
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}
