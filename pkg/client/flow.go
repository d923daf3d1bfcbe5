package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/redweb-api/pkg/validation"
)

// Mode - форма, которую сейчас видит пользователь
type Mode string

const (
	ModeLogin          Mode = "login"
	ModeRegister       Mode = "register"
	ModeCode           Mode = "code"
	ModePassword       Mode = "password"
	ModeForgotPassword Mode = "forgot-password"
	ModeResetPassword  Mode = "reset-password"
	ModeNewPassword    Mode = "new-password"
)

// ResendCooldown - пауза между отправками кода на клиенте. Сервер следит за своим интервалом.
const ResendCooldown = 60 * time.Second

// Поля формы для FieldError
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldCode        = "verificationCode"
	FieldNewPassword = "newPassword"
)

var (
	// ErrWrongMode - действие недоступно в текущем режиме
	ErrWrongMode = errors.New("action is not available in this mode")
	// ErrResendCooldown - с прошлой отправки прошло меньше ResendCooldown
	ErrResendCooldown = errors.New("resend cooldown is active")
)

// FieldError - ошибка локальной проверки поля, запрос на сервер не уходит
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// API - методы Client, нужные FlowController
type API interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	SendRegistrationCode(ctx context.Context, email string) error
	VerifyRegistrationCode(ctx context.Context, email, code string) error
	SendResetCode(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code string) error
	UpdatePassword(ctx context.Context, email, code, newPassword string) error
}

// SessionSaver сохраняет сессию после успешного входа
type SessionSaver interface {
	Save(session *Session) error
}

// FlowController управляет формами входа, регистрации и сброса пароля.
// Режим меняется только после успешного ответа сервера.
// Собственные часы на клиенте есть только у паузы повторной отправки.
type FlowController struct {
	api      API
	sessions SessionSaver

	mu         sync.Mutex
	mode       Mode
	email      string
	code       string
	lastSentAt time.Time
	now        func() time.Time
}

// NewFlowController начинает с формы входа. sessions может быть nil.
func NewFlowController(api API, sessions SessionSaver) *FlowController {
	return &FlowController{
		api:      api,
		sessions: sessions,
		mode:     ModeLogin,
		now:      time.Now,
	}
}

func (f *FlowController) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Email - адрес, с которым работает текущий сценарий
func (f *FlowController) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// SwitchTo открывает одну из стартовых форм (login, register, forgot-password) и сбрасывает состояние
func (f *FlowController) SwitchTo(mode Mode) error {
	switch mode {
	case ModeLogin, ModeRegister, ModeForgotPassword:
	default:
		return fmt.Errorf("%w: cannot switch to %s", ErrWrongMode, mode)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset(mode)
	return nil
}

// reset вызывается под mu
func (f *FlowController) reset(mode Mode) {
	f.mode = mode
	f.email = ""
	f.code = ""
	f.lastSentAt = time.Time{}
}

// ResendRemaining - сколько ждать до следующего запроса кода
func (f *FlowController) ResendRemaining(now time.Time) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resendRemaining(now)
}

func (f *FlowController) resendRemaining(now time.Time) time.Duration {
	if f.lastSentAt.IsZero() {
		return 0
	}
	left := f.lastSentAt.Add(ResendCooldown).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// SendCode запрашивает код для email. Из register переходит в code,
// из forgot-password в reset-password. В режимах code и reset-password код
// отправляется повторно на уже введенный адрес, аргумент email игнорируется.
func (f *FlowController) SendCode(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	resend := f.mode == ModeCode || f.mode == ModeResetPassword
	if resend {
		email = f.email
		if left := f.resendRemaining(f.now()); left > 0 {
			return fmt.Errorf("%w: %s left", ErrResendCooldown, left.Round(time.Second))
		}
	} else {
		email = validation.NormalizeEmail(email)
		if !validation.Email(email) {
			return &FieldError{Field: FieldEmail, Message: "Введите корректный email"}
		}
	}

	var next Mode
	var err error
	switch f.mode {
	case ModeRegister, ModeCode:
		next = ModeCode
		err = f.api.SendRegistrationCode(ctx, email)
	case ModeForgotPassword, ModeResetPassword:
		next = ModeResetPassword
		err = f.api.SendResetCode(ctx, email)
	default:
		return fmt.Errorf("%w: send code in %s", ErrWrongMode, f.mode)
	}
	if err != nil {
		return err
	}

	f.mode = next
	f.email = email
	f.lastSentAt = f.now()
	return nil
}

// VerifyCode проверяет код: из code в password, из reset-password в new-password
func (f *FlowController) VerifyCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if !validation.Code(code) {
		return &FieldError{Field: FieldCode, Message: "Введите 6 цифр"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var next Mode
	var err error
	switch f.mode {
	case ModeCode:
		next = ModePassword
		err = f.api.VerifyRegistrationCode(ctx, f.email, code)
	case ModeResetPassword:
		next = ModeNewPassword
		err = f.api.VerifyResetCode(ctx, f.email, code)
	default:
		return fmt.Errorf("%w: verify code in %s", ErrWrongMode, f.mode)
	}
	if err != nil {
		return err
	}

	f.mode = next
	f.code = code
	return nil
}

// Register создает аккаунт для подтвержденного email и сразу входит.
// При успехе форма возвращается ко входу, сессия сохраняется.
func (f *FlowController) Register(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &FieldError{Field: FieldUsername, Message: "Имя обязательно"}
	}
	if validation.PasswordTooLong(password) {
		return nil, &FieldError{Field: FieldPassword, Message: "Пароль слишком длинный"}
	}
	if !validation.Password(password) {
		return nil, &FieldError{Field: FieldPassword, Message: "Пароль должен быть минимум 6 символов"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode != ModePassword {
		return nil, fmt.Errorf("%w: register in %s", ErrWrongMode, f.mode)
	}
	if err := f.api.Register(ctx, username, f.email, password); err != nil {
		return nil, err
	}

	resp, err := f.api.Login(ctx, f.email, password)
	if err != nil {
		// Аккаунт создан, войти можно обычным способом
		f.reset(ModeLogin)
		return nil, err
	}
	return f.finish(resp)
}

// Login выполняет вход из формы входа и сохраняет сессию
func (f *FlowController) Login(ctx context.Context, email, password string) (*Session, error) {
	email = validation.NormalizeEmail(email)
	if !validation.Email(email) {
		return nil, &FieldError{Field: FieldEmail, Message: "Email обязателен"}
	}
	if password == "" {
		return nil, &FieldError{Field: FieldPassword, Message: "Пароль обязателен"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode != ModeLogin {
		return nil, fmt.Errorf("%w: login in %s", ErrWrongMode, f.mode)
	}
	resp, err := f.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return f.finish(resp)
}

// finish вызывается под mu
func (f *FlowController) finish(resp *LoginResponse) (*Session, error) {
	session := NewSession(resp)
	f.reset(ModeLogin)
	if f.sessions != nil {
		if err := f.sessions.Save(session); err != nil {
			return session, err
		}
	}
	return session, nil
}

// UpdatePassword ставит новый пароль по подтвержденному коду сброса и возвращает ко входу
func (f *FlowController) UpdatePassword(ctx context.Context, newPassword string) error {
	if validation.PasswordTooLong(newPassword) {
		return &FieldError{Field: FieldNewPassword, Message: "Пароль слишком длинный"}
	}
	if !validation.Password(newPassword) {
		return &FieldError{Field: FieldNewPassword, Message: "Пароль должен быть минимум 6 символов"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode != ModeNewPassword {
		return fmt.Errorf("%w: update password in %s", ErrWrongMode, f.mode)
	}
	if err := f.api.UpdatePassword(ctx, f.email, f.code, newPassword); err != nil {
		return err
	}

	f.reset(ModeLogin)
	return nil
}
