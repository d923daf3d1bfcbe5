package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUser_BeforeSave(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("alreadyHashed"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name       string
		password   string
		wantChange bool
	}{
		{"открытый пароль хешируется", "secret123", true},
		{"готовый хеш не хешируется повторно", string(hashed), false},
		{"пустой пароль остается пустым", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			user := &User{Username: "v", Email: "v@night.city", Password: tt.password}

			// Act
			err := user.BeforeSave(nil)

			// Assert
			require.NoError(t, err)
			if tt.wantChange {
				assert.NotEqual(t, tt.password, user.Password, "Пароль должен быть заменен хешем")
				assert.True(t, IsPasswordHash(user.Password), "Результат должен быть bcrypt-хешем")
				assert.True(t, user.CheckPassword(tt.password), "Хеш должен соответствовать исходному паролю")
			} else {
				assert.Equal(t, tt.password, user.Password, "Пароль не должен изменяться")
			}
		})
	}
}

func TestUser_CheckPassword(t *testing.T) {
	// Arrange
	hashed, err := HashPassword("correctPassword")
	require.NoError(t, err)
	user := &User{Password: hashed}

	// Act & Assert
	assert.True(t, user.CheckPassword("correctPassword"), "Правильный пароль должен подходить")
	assert.False(t, user.CheckPassword("wrongPassword"), "Неправильный пароль не должен подходить")
	assert.False(t, user.CheckPassword(""), "Пустой пароль не должен подходить")
}

func TestUser_ResetCheck(t *testing.T) {
	expires := time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC)
	code := "123456"
	empty := ""

	t.Run("нет кода", func(t *testing.T) {
		user := &User{}
		assert.Nil(t, user.ResetCheck())
	})

	t.Run("код очищен", func(t *testing.T) {
		user := &User{ResetCode: &empty, ResetExpires: &expires}
		assert.Nil(t, user.ResetCheck())
	})

	t.Run("живой код", func(t *testing.T) {
		user := &User{ResetCode: &code, ResetExpires: &expires, ResetAttempts: 2}

		check := user.ResetCheck()

		require.NotNil(t, check)
		assert.Equal(t, "123456", check.Code)
		assert.Equal(t, expires, check.ExpiresAt)
		assert.Equal(t, 2, check.Attempts)
		assert.False(t, check.Used, "Код сброса не имеет флага использования")
	})
}

func TestUser_Public(t *testing.T) {
	user := &User{ID: 7, Username: "johnny", Email: "johnny@samurai.band", Password: "x", Bio: "rockerboy"}

	assert.Equal(t, PublicUser{ID: 7, Username: "johnny", Email: "johnny@samurai.band"}, user.Public())
}

func TestUser_TableName(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
}
