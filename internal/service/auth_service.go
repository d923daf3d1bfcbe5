package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	"github.com/yourusername/redweb-api/internal/domain/repository"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
	"github.com/yourusername/redweb-api/pkg/auth"
	"github.com/yourusername/redweb-api/pkg/validation"
)

// AuthService отвечает за регистрацию, вход и сессии
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	log        *zap.Logger

	emailVerification    *EmailVerificationService
	requireVerifiedEmail bool

	dummyOnce sync.Once
	dummyHash string
}

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult - ответ на успешный вход
type LoginResult struct {
	User        entity.PublicUser `json:"user"`
	AccessToken string            `json:"accessToken"`
	TokenType   string            `json:"tokenType"`
	ExpiresIn   int64             `json:"expiresIn"`
	ExpiresAt   time.Time         `json:"expiresAt"`
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, log *zap.Logger) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		log:        log.With(zap.String("component", "auth")),
	}, nil
}

// SetEmailVerification включает требование подтвержденного email при регистрации
func (s *AuthService) SetEmailVerification(svc *EmailVerificationService, required bool) {
	s.emailVerification = svc
	s.requireVerifiedEmail = required && svc != nil
}

// Register создает аккаунт. Занятые username или email дают одну и ту же ErrConflict.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = validation.NormalizeEmail(input.Email)

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: all fields are required", apperrors.ErrValidation)
	}
	if !validation.Email(input.Email) {
		return nil, fmt.Errorf("%w: invalid email", apperrors.ErrValidation)
	}
	if validation.PasswordTooLong(input.Password) {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", apperrors.ErrValidation, validation.MaxPasswordBytes)
	}
	if !validation.Password(input.Password) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, validation.MinPasswordLength)
	}

	if err := s.ensureAvailable(input.Username, input.Email); err != nil {
		return nil, err
	}

	if s.requireVerifiedEmail {
		verified, err := s.emailVerification.IsVerified(input.Email)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, ErrEmailNotVerified
		}
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password, // хешируется в BeforeSave
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: email or username taken", apperrors.ErrConflict)
		}
		return nil, transientError("create user", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *AuthService) ensureAvailable(username, email string) error {
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return fmt.Errorf("%w: email or username taken", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return transientError("check email", err)
	}

	_, err = s.userRepo.GetByUsername(username)
	if err == nil {
		return fmt.Errorf("%w: email or username taken", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return transientError("check username", err)
	}
	return nil
}

// dummyPasswordHash возвращает хеш для сравнения при неизвестном email,
// чтобы время ответа не выдавало существование аккаунта
func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := entity.HashPassword("redweb-timing-guard")
		if err != nil {
			s.log.Error("failed to prepare dummy password hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Login проверяет учетные данные и выпускает токен сессии
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(email)
	if errors.Is(err, apperrors.ErrNotFound) {
		dummy := &entity.User{Password: s.dummyPasswordHash()}
		dummy.CheckPassword(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, transientError("load user", err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, transientError("issue token", err)
	}

	s.log.Info("user logged in", zap.Uint("user_id", user.ID))
	return &LoginResult{
		User:        user.Public(),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtService.TTL().Seconds()),
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Session возвращает пользователя для уже проверенных claims
func (s *AuthService) Session(claims *auth.JWTCustomClaims) (*entity.User, error) {
	user, err := s.userRepo.GetByID(claims.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: account no longer exists", apperrors.ErrUnauthorized)
	}
	if err != nil {
		return nil, transientError("load user", err)
	}
	return user, nil
}

// Logout отзывает текущий токен
func (s *AuthService) Logout(claims *auth.JWTCustomClaims) error {
	if err := s.jwtService.Revoke(claims); err != nil {
		return transientError("revoke session", err)
	}
	return nil
}
