package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
	"github.com/yourusername/redweb-api/internal/repository/memory"
)

type resetFixture struct {
	svc   *PasswordResetService
	users *memory.UserRepo
	email *MockEmailService
	clock *testClock
}

func newResetFixture(t *testing.T, codes ...string) *resetFixture {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	users := memory.NewUserRepo(memory.NewStore())
	require.NoError(t, users.Create(&entity.User{Username: "v", Email: "v@night.city", Password: "oldPassword"}))

	emailMock := new(MockEmailService)
	emailMock.On("SendCode", mock.Anything, "v@night.city", mock.AnythingOfType("service.CodeMessage"), mock.AnythingOfType("string")).Return(nil)

	svc, err := NewPasswordResetService(users, nil, emailMock, noCooldown(), nil)
	require.NoError(t, err)
	svc.now = clock.Now
	if len(codes) > 0 {
		svc.issuer.generate = fixedCodes(codes...)
	}
	return &resetFixture{svc: svc, users: users, email: emailMock, clock: clock}
}

func (f *resetFixture) user(t *testing.T) *entity.User {
	t.Helper()
	user, err := f.users.GetByEmail("v@night.city")
	require.NoError(t, err)
	return user
}

func TestPasswordResetService_SendCode_UnknownEmail(t *testing.T) {
	// Arrange
	f := newResetFixture(t)
	before := f.user(t)

	// Act
	err := f.svc.SendCode(context.Background(), "ghost@night.city")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.email.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, before, f.user(t), "Существующие строки не должны измениться")
}

func TestPasswordResetService_SendCode_StoresCodeOnAccount(t *testing.T) {
	// Arrange
	f := newResetFixture(t, "111111", "222222")
	var sent CodeMessage
	f.email.ExpectedCalls = nil
	f.email.On("SendCode", mock.Anything, "v@night.city", mock.AnythingOfType("service.CodeMessage"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sent = args.Get(2).(CodeMessage) }).
		Return(nil)

	// Act
	require.NoError(t, f.svc.SendCode(context.Background(), "V@Night.City"))
	require.NoError(t, f.svc.SendCode(context.Background(), "v@night.city"))

	// Assert
	user := f.user(t)
	require.NotNil(t, user.ResetCode)
	assert.Equal(t, "222222", *user.ResetCode, "Новый код заменяет предыдущий")
	require.NotNil(t, user.ResetExpires)
	assert.Equal(t, f.clock.now.Add(5*time.Minute), *user.ResetExpires)
	assert.Equal(t, "Сброс пароля", sent.Subject)
	assert.Equal(t, "Ваш код сброса пароля: 222222 (действует 5 минут)", sent.Text)
}

func TestPasswordResetService_VerifyCode_DoesNotConsume(t *testing.T) {
	// Arrange
	f := newResetFixture(t, "123456")
	require.NoError(t, f.svc.SendCode(context.Background(), "v@night.city"))

	// Act & Assert
	assert.NoError(t, f.svc.VerifyCode(context.Background(), "v@night.city", "123456"))
	assert.NoError(t, f.svc.VerifyCode(context.Background(), "v@night.city", "123456"),
		"Проверка кода сброса не расходует его")
	assert.NotNil(t, f.user(t).ResetCode)
}

func TestPasswordResetService_UpdatePassword_Success(t *testing.T) {
	// Arrange
	f := newResetFixture(t, "123456")
	require.NoError(t, f.svc.SendCode(context.Background(), "v@night.city"))

	// Act: без предварительного вызова VerifyCode
	err := f.svc.UpdatePassword(context.Background(), "v@night.city", "123456", "newPassword")

	// Assert
	require.NoError(t, err)
	user := f.user(t)
	assert.True(t, user.CheckPassword("newPassword"), "Новый пароль должен подходить")
	assert.False(t, user.CheckPassword("oldPassword"), "Старый пароль больше не подходит")
	assert.Nil(t, user.ResetCode, "Код сброса очищается")

	// Повторно код не действует
	assert.ErrorIs(t, f.svc.VerifyCode(context.Background(), "v@night.city", "123456"), ErrInvalidVerificationCode)
	assert.ErrorIs(t, f.svc.UpdatePassword(context.Background(), "v@night.city", "123456", "thirdPassword"), ErrInvalidVerificationCode)
}

func TestPasswordResetService_UpdatePassword_Revalidates(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		code    string
		advance time.Duration
		wantErr error
	}{
		{"неверный код", "v@night.city", "000000", 0, ErrInvalidVerificationCode},
		{"код истек после проверки", "v@night.city", "123456", 5*time.Minute + time.Second, ErrVerificationExpired},
		{"нет аккаунта", "ghost@night.city", "123456", 0, apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newResetFixture(t, "123456")
			require.NoError(t, f.svc.SendCode(context.Background(), "v@night.city"))
			require.NoError(t, f.svc.VerifyCode(context.Background(), "v@night.city", "123456"))
			f.clock.Advance(tt.advance)

			// Act
			err := f.svc.UpdatePassword(context.Background(), tt.email, tt.code, "newPassword")

			// Assert
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, f.user(t).CheckPassword("oldPassword"), "Пароль не должен измениться")
		})
	}
}

func TestPasswordResetService_VerifyCode_Errors(t *testing.T) {
	t.Run("нет кода сброса", func(t *testing.T) {
		f := newResetFixture(t)
		err := f.svc.VerifyCode(context.Background(), "v@night.city", "123456")
		assert.ErrorIs(t, err, ErrInvalidVerificationCode)
	})

	t.Run("нет аккаунта", func(t *testing.T) {
		f := newResetFixture(t)
		err := f.svc.VerifyCode(context.Background(), "ghost@night.city", "123456")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("пустые поля", func(t *testing.T) {
		f := newResetFixture(t)
		assert.ErrorIs(t, f.svc.VerifyCode(context.Background(), "", "123456"), apperrors.ErrValidation)
		assert.ErrorIs(t, f.svc.VerifyCode(context.Background(), "v@night.city", ""), apperrors.ErrValidation)
	})
}

func TestPasswordResetService_AttemptsExhausted(t *testing.T) {
	// Arrange
	f := newResetFixture(t, "123456")
	require.NoError(t, f.svc.SendCode(context.Background(), "v@night.city"))

	// Act
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, f.svc.VerifyCode(context.Background(), "v@night.city", "000000"), ErrInvalidVerificationCode)
	}
	err := f.svc.UpdatePassword(context.Background(), "v@night.city", "123456", "newPassword")

	// Assert
	assert.ErrorIs(t, err, ErrVerificationAttemptsExceeded)
	assert.Equal(t, 5, f.user(t).ResetAttempts)
	assert.True(t, f.user(t).CheckPassword("oldPassword"))
}

func TestPasswordResetService_UpdatePassword_ShortPasswordKeepsCode(t *testing.T) {
	// Arrange
	f := newResetFixture(t, "123456")
	require.NoError(t, f.svc.SendCode(context.Background(), "v@night.city"))

	// Act
	err := f.svc.UpdatePassword(context.Background(), "v@night.city", "123456", "12345")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.NotNil(t, f.user(t).ResetCode, "Код остается действительным")
	assert.Equal(t, 0, f.user(t).ResetAttempts)
}

func TestPasswordResetService_UpdatePassword_TooLongPasswordKeepsCode(t *testing.T) {
	// Arrange
	f := newResetFixture(t, "123456")
	require.NoError(t, f.svc.SendCode(context.Background(), "v@night.city"))

	// Act
	err := f.svc.UpdatePassword(context.Background(), "v@night.city", "123456", strings.Repeat("пароль", 7))

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation, "84 байта не доходят до bcrypt")
	assert.NotNil(t, f.user(t).ResetCode, "Код остается действительным")
	assert.NoError(t, f.svc.UpdatePassword(context.Background(), "v@night.city", "123456", "пароль7"))
}

func TestPasswordResetService_SendCode_StoreFailure(t *testing.T) {
	// Arrange
	users := new(MockUserRepository)
	users.On("GetByEmail", "v@night.city").Return(&entity.User{ID: 1, Email: "v@night.city"}, nil)
	users.On("SetResetCode", "v@night.city", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(errors.New("deadlock detected"))
	emailMock := new(MockEmailService)
	svc, err := NewPasswordResetService(users, nil, emailMock, noCooldown(), nil)
	require.NoError(t, err)

	// Act
	err = svc.SendCode(context.Background(), "v@night.city")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrTransient)
	emailMock.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
