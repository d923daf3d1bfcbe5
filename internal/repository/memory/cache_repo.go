package memory

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

type cacheItem struct {
	value     string
	expiresAt time.Time // нулевое значение означает бессрочный ключ
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// CacheRepo - кеш в памяти процесса с TTL, используется без Redis
type CacheRepo struct {
	mu    sync.Mutex
	items map[string]cacheItem
	now   func() time.Time
}

func NewCacheRepo() *CacheRepo {
	return &CacheRepo{items: make(map[string]cacheItem), now: time.Now}
}

// WithClock подменяет источник времени
func (r *CacheRepo) WithClock(now func() time.Time) *CacheRepo {
	r.now = now
	return r
}

func (r *CacheRepo) expiry(expiration time.Duration) time.Time {
	if expiration <= 0 {
		return time.Time{}
	}
	return r.now().Add(expiration)
}

// live возвращает элемент, удаляя его, если срок истек. Вызывается под mu.
func (r *CacheRepo) live(key string) (cacheItem, bool) {
	item, ok := r.items[key]
	if !ok {
		return cacheItem{}, false
	}
	if item.expired(r.now()) {
		delete(r.items, key)
		return cacheItem{}, false
	}
	return item, true
}

func (r *CacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = cacheItem{value: fmt.Sprint(value), expiresAt: r.expiry(expiration)}
	return nil
}

func (r *CacheRepo) Get(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.live(key)
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return item.value, nil
}

func (r *CacheRepo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, key)
	return nil
}

func (r *CacheRepo) Exists(key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live(key)
	return ok, nil
}

func (r *CacheRepo) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live(key); ok {
		return false, nil
	}
	r.items[key] = cacheItem{value: fmt.Sprint(value), expiresAt: r.expiry(expiration)}
	return true, nil
}

func (r *CacheRepo) IncrementWindow(key string, window time.Duration) (int64, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.live(key)
	var count int64
	if ok {
		if _, err := fmt.Sscan(item.value, &count); err != nil {
			return 0, 0, fmt.Errorf("value of %s is not a counter: %w", key, err)
		}
	} else {
		item = cacheItem{expiresAt: r.expiry(window)}
	}
	count++
	item.value = fmt.Sprint(count)
	r.items[key] = item

	ttl := window
	if !item.expiresAt.IsZero() {
		ttl = item.expiresAt.Sub(r.now())
	}
	return count, ttl, nil
}
