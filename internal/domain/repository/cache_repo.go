package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	// SetNX устанавливает ключ, только если его нет. true означает, что ключ установлен.
	SetNX(key string, value interface{}, expiration time.Duration) (bool, error)
	// IncrementWindow увеличивает счетчик фиксированного окна и возвращает
	// новое значение и оставшееся время жизни окна.
	IncrementWindow(key string, window time.Duration) (int64, time.Duration, error)
}
