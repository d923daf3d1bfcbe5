package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrNotAuthenticated - сохраненной сессии нет
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired - сессия истекла или отклонена сервером
	ErrSessionExpired = errors.New("session expired")
)

// Session - результат входа, сохраненный локально
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewSession собирает сессию из ответа на вход
func NewSession(resp *LoginResponse) *Session {
	return &Session{User: resp.User, Token: resp.AccessToken, ExpiresAt: resp.ExpiresAt}
}

// Valid - токен есть и не истек к моменту now
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// SessionStore хранит одну сессию в JSON файле
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load возвращает ErrNotAuthenticated, если файла сессии нет
func (s *SessionStore) Load() (*Session, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &session, nil
}

// Save атомарно заменяет сохраненную сессию
func (s *SessionStore) Save(session *Session) error {
	raw, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Clear удаляет сессию. Отсутствие файла не ошибка.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SessionChecker подтверждает токен на сервере
type SessionChecker interface {
	Session(ctx context.Context, token string) (*SessionInfo, error)
}

// Guard пропускает только с живой сессией. Одного наличия файла мало:
// срок проверяется локально, а при заданном checker токен подтверждает сервер.
type Guard struct {
	store   *SessionStore
	checker SessionChecker
	now     func() time.Time
}

// NewGuard создает guard. При nil checker проверка только локальная.
func NewGuard(store *SessionStore, checker SessionChecker) *Guard {
	return &Guard{store: store, checker: checker, now: time.Now}
}

// Require возвращает текущую сессию либо ErrNotAuthenticated или ErrSessionExpired.
// Истекшая или отклоненная сессия удаляется из хранилища.
func (g *Guard) Require(ctx context.Context) (*Session, error) {
	session, err := g.store.Load()
	if err != nil {
		return nil, err
	}
	if !session.Valid(g.now()) {
		_ = g.store.Clear()
		return nil, ErrSessionExpired
	}
	if g.checker == nil {
		return session, nil
	}

	info, err := g.checker.Session(ctx, session.Token)
	if StatusOf(err) == http.StatusUnauthorized {
		_ = g.store.Clear()
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}
	session.User = info.User
	return session, nil
}
