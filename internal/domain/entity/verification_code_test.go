package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateCode(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	const maxAttempts = 5

	tests := []struct {
		name     string
		check    *CodeCheck
		supplied string
		want     CodeState
	}{
		{
			name:     "нет записи",
			check:    nil,
			supplied: "123456",
			want:     CodeNoRecord,
		},
		{
			name:     "совпадение",
			check:    &CodeCheck{Code: "123456", ExpiresAt: now.Add(time.Minute)},
			supplied: "123456",
			want:     CodeValid,
		},
		{
			name:     "несовпадение оставляет запись ожидающей",
			check:    &CodeCheck{Code: "123456", ExpiresAt: now.Add(time.Minute), Attempts: 3},
			supplied: "654321",
			want:     CodePending,
		},
		{
			name:     "истекший код проверяется раньше совпадения",
			check:    &CodeCheck{Code: "123456", ExpiresAt: now.Add(-time.Second)},
			supplied: "123456",
			want:     CodeExpired,
		},
		{
			name:     "ровно в момент истечения код еще действует",
			check:    &CodeCheck{Code: "123456", ExpiresAt: now},
			supplied: "123456",
			want:     CodeValid,
		},
		{
			name:     "исчерпанные попытки блокируют даже верный код",
			check:    &CodeCheck{Code: "123456", ExpiresAt: now.Add(time.Minute), Attempts: maxAttempts},
			supplied: "123456",
			want:     CodeExhausted,
		},
		{
			name:     "использованный код не принимается повторно",
			check:    &CodeCheck{Code: "123456", ExpiresAt: now.Add(time.Minute), Used: true},
			supplied: "123456",
			want:     CodeConsumed,
		},
		{
			name:     "истечение важнее использования",
			check:    &CodeCheck{Code: "123456", ExpiresAt: now.Add(-time.Minute), Used: true, Attempts: maxAttempts},
			supplied: "123456",
			want:     CodeExpired,
		},
		{
			name:     "использование важнее исчерпания",
			check:    &CodeCheck{Code: "123456", ExpiresAt: now.Add(time.Minute), Used: true, Attempts: maxAttempts},
			supplied: "000000",
			want:     CodeConsumed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateCode(tt.check, tt.supplied, now, maxAttempts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerificationCode_Check(t *testing.T) {
	var missing *VerificationCode
	assert.Nil(t, missing.Check(), "nil запись дает nil проверку")

	expires := time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC)
	record := &VerificationCode{Email: "v@night.city", Code: "111111", ExpiresAt: expires, Attempts: 1, IsUsed: true}

	assert.Equal(t, &CodeCheck{Code: "111111", ExpiresAt: expires, Attempts: 1, Used: true}, record.Check())
}
