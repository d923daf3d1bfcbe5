package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
	"github.com/yourusername/redweb-api/internal/repository/memory"
)

// MockVerificationCodeRepository реализует repository.VerificationCodeRepository
type MockVerificationCodeRepository struct {
	mock.Mock
}

func (m *MockVerificationCodeRepository) Upsert(code *entity.VerificationCode) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) GetByEmail(email string) (*entity.VerificationCode, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepository) IncrementAttempts(email, storedCode string, maxAttempts int) (bool, error) {
	args := m.Called(email, storedCode, maxAttempts)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerificationCodeRepository) MarkUsed(email, code string, now time.Time, maxAttempts int) (bool, error) {
	args := m.Called(email, code, now, maxAttempts)
	return args.Bool(0), args.Error(1)
}

// testClock - управляемые часы для сервиса и кеша
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fixedCodes выдает коды по очереди, повторяя последний
func fixedCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return code, nil
	}
}

type verificationFixture struct {
	svc   *EmailVerificationService
	codes *memory.VerificationCodeRepo
	cache *memory.CacheRepo
	email *MockEmailService
	clock *testClock
}

func newVerificationFixture(t *testing.T, policy CodePolicy, codes ...string) *verificationFixture {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewStore()
	repo := memory.NewVerificationCodeRepo(store)
	cache := memory.NewCacheRepo().WithClock(clock.Now)
	emailMock := new(MockEmailService)

	svc, err := NewEmailVerificationService(repo, cache, emailMock, policy, zap.NewNop())
	require.NoError(t, err)
	svc.now = clock.Now
	if len(codes) > 0 {
		svc.issuer.generate = fixedCodes(codes...)
	}
	return &verificationFixture{svc: svc, codes: repo, cache: cache, email: emailMock, clock: clock}
}

func noCooldown() CodePolicy {
	return CodePolicy{TTL: 5 * time.Minute, MaxAttempts: 5, ResendInterval: 0}
}

func (f *verificationFixture) expectSend(to string) {
	f.email.On("SendCode", mock.Anything, to, mock.AnythingOfType("service.CodeMessage"), mock.AnythingOfType("string")).Return(nil)
}

func TestEmailVerificationService_SendCode_ReplacesPreviousCode(t *testing.T) {
	// Arrange
	f := newVerificationFixture(t, noCooldown(), "111111", "222222")
	f.expectSend("a@b.com")

	// Act
	require.NoError(t, f.svc.SendCode(context.Background(), "a@b.com"))
	require.NoError(t, f.svc.SendCode(context.Background(), "a@b.com"))

	// Assert
	record, err := f.codes.GetByEmail("a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", record.Code, "Должен остаться только второй код")
	assert.Equal(t, 0, record.Attempts)
	assert.False(t, record.IsUsed)
	assert.Equal(t, f.clock.now.Add(5*time.Minute), record.ExpiresAt, "Срок действия 5 минут от выдачи")

	assert.ErrorIs(t, f.svc.VerifyCode(context.Background(), "a@b.com", "111111"), ErrInvalidVerificationCode,
		"Старый код больше не действует")
	assert.NoError(t, f.svc.VerifyCode(context.Background(), "a@b.com", "222222"))
	f.email.AssertNumberOfCalls(t, "SendCode", 2)
}

func TestEmailVerificationService_SendCode_ComposesRegistrationMessage(t *testing.T) {
	// Arrange
	f := newVerificationFixture(t, noCooldown(), "123456")
	var sent CodeMessage
	f.email.On("SendCode", mock.Anything, "a@b.com", mock.AnythingOfType("service.CodeMessage"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sent = args.Get(2).(CodeMessage) }).
		Return(nil)

	// Act
	err := f.svc.SendCode(context.Background(), "  A@B.com ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Код подтверждения регистрации", sent.Subject)
	assert.Equal(t, "Ваш код: 123456 (действует 5 минут)", sent.Text)
}

func TestEmailVerificationService_SendCode_InvalidEmail(t *testing.T) {
	for _, email := range []string{"", "plain", "a@b", "a b@c.com"} {
		t.Run(email, func(t *testing.T) {
			f := newVerificationFixture(t, noCooldown())

			err := f.svc.SendCode(context.Background(), email)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			f.email.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestEmailVerificationService_VerifyCode_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr error
	}{
		{"ровно на границе срока", 5 * time.Minute, nil},
		{"через секунду после срока", 5*time.Minute + time.Second, ErrVerificationExpired},
		{"через час", time.Hour, ErrVerificationExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newVerificationFixture(t, noCooldown(), "123456")
			f.expectSend("a@b.com")
			require.NoError(t, f.svc.SendCode(context.Background(), "a@b.com"))
			f.clock.Advance(tt.elapsed)

			// Act
			err := f.svc.VerifyCode(context.Background(), "a@b.com", "123456")

			// Assert
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			record, getErr := f.codes.GetByEmail("a@b.com")
			require.NoError(t, getErr)
			assert.Equal(t, 0, record.Attempts, "Истекший код не расходует попытки")
			assert.False(t, record.IsUsed)
		})
	}
}

func TestEmailVerificationService_VerifyCode_ExhaustedAfterFiveMismatches(t *testing.T) {
	// Arrange
	f := newVerificationFixture(t, noCooldown(), "123456")
	f.expectSend("a@b.com")
	require.NoError(t, f.svc.SendCode(context.Background(), "a@b.com"))

	// Act & Assert
	for i := 1; i <= 5; i++ {
		err := f.svc.VerifyCode(context.Background(), "a@b.com", "000000")
		assert.ErrorIs(t, err, ErrInvalidVerificationCode, "Попытка %d должна быть отклонена как неверная", i)
	}

	err := f.svc.VerifyCode(context.Background(), "a@b.com", "123456")
	assert.ErrorIs(t, err, ErrVerificationAttemptsExceeded, "Шестая попытка отклоняется даже с верным кодом")

	record, getErr := f.codes.GetByEmail("a@b.com")
	require.NoError(t, getErr)
	assert.Equal(t, 5, record.Attempts, "Счетчик не превышает порог")
	assert.False(t, record.IsUsed)
}

func TestEmailVerificationService_VerifyCode_ConsumedIsTerminal(t *testing.T) {
	// Arrange
	f := newVerificationFixture(t, noCooldown(), "123456")
	f.expectSend("a@b.com")
	require.NoError(t, f.svc.SendCode(context.Background(), "a@b.com"))

	// Act: неверный код
	err := f.svc.VerifyCode(context.Background(), "a@b.com", "000000")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)
	record, _ := f.codes.GetByEmail("a@b.com")
	assert.Equal(t, 1, record.Attempts)

	// Act: верный код
	err = f.svc.VerifyCode(context.Background(), "a@b.com", "123456")

	// Assert
	require.NoError(t, err)
	record, _ = f.codes.GetByEmail("a@b.com")
	assert.True(t, record.IsUsed)

	verified, err := f.svc.IsVerified("a@b.com")
	require.NoError(t, err)
	assert.True(t, verified)

	// Act: повторное использование
	err = f.svc.VerifyCode(context.Background(), "a@b.com", "123456")

	// Assert
	assert.ErrorIs(t, err, ErrVerificationCodeConsumed, "Использованный код не принимается повторно")
}

func TestEmailVerificationService_VerifyCode_NoRecord(t *testing.T) {
	f := newVerificationFixture(t, noCooldown())

	err := f.svc.VerifyCode(context.Background(), "nobody@b.com", "123456")

	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestEmailVerificationService_VerifyCode_MalformedInputDoesNotChargeAttempt(t *testing.T) {
	// Arrange
	f := newVerificationFixture(t, noCooldown(), "123456")
	f.expectSend("a@b.com")
	require.NoError(t, f.svc.SendCode(context.Background(), "a@b.com"))

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		// Act
		err := f.svc.VerifyCode(context.Background(), "a@b.com", code)

		// Assert
		assert.ErrorIs(t, err, apperrors.ErrValidation, "Код %q должен отклоняться валидацией", code)
	}
	record, _ := f.codes.GetByEmail("a@b.com")
	assert.Equal(t, 0, record.Attempts, "Некорректный ввод не расходует попытки")
}

func TestEmailVerificationService_SendCode_ResendCooldown(t *testing.T) {
	// Arrange
	f := newVerificationFixture(t, DefaultCodePolicy(), "111111", "222222")
	f.expectSend("a@b.com")
	require.NoError(t, f.svc.SendCode(context.Background(), "a@b.com"))

	// Act: повторная отправка сразу
	err := f.svc.SendCode(context.Background(), "a@b.com")

	// Assert
	assert.ErrorIs(t, err, ErrVerificationResendCooldown)
	record, _ := f.codes.GetByEmail("a@b.com")
	assert.Equal(t, "111111", record.Code, "Код не должен меняться во время ожидания")

	// Act: после интервала
	f.clock.Advance(61 * time.Second)
	err = f.svc.SendCode(context.Background(), "a@b.com")

	// Assert
	require.NoError(t, err)
	record, _ = f.codes.GetByEmail("a@b.com")
	assert.Equal(t, "222222", record.Code)
	f.email.AssertNumberOfCalls(t, "SendCode", 2)
}

func TestEmailVerificationService_SendCode_DeliveryFailure(t *testing.T) {
	// Arrange
	f := newVerificationFixture(t, DefaultCodePolicy(), "123456")
	f.email.On("SendCode", mock.Anything, "a@b.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp: connection refused")).Once()
	f.expectSend("a@b.com")

	// Act
	err := f.svc.SendCode(context.Background(), "a@b.com")

	// Assert
	assert.ErrorIs(t, err, ErrEmailDelivery, "Сбой доставки отличим от сбоя хранения")
	assert.ErrorIs(t, err, apperrors.ErrTransient)
	_, getErr := f.codes.GetByEmail("a@b.com")
	assert.NoError(t, getErr, "Код сохранен до попытки доставки")

	// Окно ожидания освобождено, повторить можно сразу
	assert.NoError(t, f.svc.SendCode(context.Background(), "a@b.com"))
}

func TestEmailVerificationService_SendCode_PersistFailureSkipsDelivery(t *testing.T) {
	// Arrange
	repo := new(MockVerificationCodeRepository)
	repo.On("Upsert", mock.AnythingOfType("*entity.VerificationCode")).Return(errors.New("connection reset"))
	emailMock := new(MockEmailService)
	svc, err := NewEmailVerificationService(repo, memory.NewCacheRepo(), emailMock, DefaultCodePolicy(), nil)
	require.NoError(t, err)

	// Act
	err = svc.SendCode(context.Background(), "a@b.com")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrTransient)
	assert.NotErrorIs(t, err, ErrEmailDelivery)
	emailMock.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEmailVerificationService_VerifyCode_LostRaceRereads(t *testing.T) {
	// Arrange
	expires := time.Now().Add(time.Minute)
	repo := new(MockVerificationCodeRepository)
	repo.On("GetByEmail", "a@b.com").
		Return(&entity.VerificationCode{Email: "a@b.com", Code: "123456", ExpiresAt: expires, Attempts: 4}, nil).Once()
	// Параллельный запрос успел израсходовать последнюю попытку
	repo.On("IncrementAttempts", "a@b.com", "123456", 5).Return(false, nil).Once()
	repo.On("GetByEmail", "a@b.com").
		Return(&entity.VerificationCode{Email: "a@b.com", Code: "123456", ExpiresAt: expires, Attempts: 5}, nil).Once()

	svc, err := NewEmailVerificationService(repo, nil, new(MockEmailService), DefaultCodePolicy(), nil)
	require.NoError(t, err)

	// Act
	err = svc.VerifyCode(context.Background(), "a@b.com", "000000")

	// Assert
	assert.ErrorIs(t, err, ErrVerificationAttemptsExceeded)
	repo.AssertExpectations(t)
}

func TestGenerateVerificationCode_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := generateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}

func TestCodePolicy_Normalized(t *testing.T) {
	p := CodePolicy{ResendInterval: -time.Second}.normalized()

	assert.Equal(t, 5*time.Minute, p.TTL)
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, time.Duration(0), p.ResendInterval, "Отрицательный интервал отключает ограничение")
}
