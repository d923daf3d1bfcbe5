// Package client - Go-клиент API регистрации и входа вместе с логикой форм, которая им управляет.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// User - пользователь из ответа на вход
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResponse - тело успешного ответа на вход
type LoginResponse struct {
	User        User      `json:"user"`
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresIn   int64     `json:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// SessionInfo - состояние токена с точки зрения сервера
type SessionInfo struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// APIError - ответ сервера со статусом вне 2xx
type APIError struct {
	Status  int
	Message string
	Type    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf возвращает HTTP статус из APIError или 0 для прочих ошибок
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client вызывает API по HTTP с JSON телами
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создает клиент для baseURL, например "http://localhost:3000".
// При nil httpClient используется клиент с тайм-аутом 15 секунд.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/register", "", body, &messageResponse{})
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SendRegistrationCode(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/register/send-code", "", map[string]string{"email": email}, &messageResponse{})
}

func (c *Client) VerifyRegistrationCode(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return c.do(ctx, http.MethodPost, "/api/register/verify-code", "", body, &messageResponse{})
}

func (c *Client) SendResetCode(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/password/reset/send-code", "", map[string]string{"email": email}, &messageResponse{})
}

func (c *Client) VerifyResetCode(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return c.do(ctx, http.MethodPost, "/api/password/reset/verify-code", "", body, &messageResponse{})
}

func (c *Client) UpdatePassword(ctx context.Context, email, code, newPassword string) error {
	body := map[string]string{"email": email, "code": code, "newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/api/password/reset/update", "", body, &messageResponse{})
}

// Session спрашивает сервер, действителен ли токен
func (c *Client) Session(ctx context.Context, token string) (*SessionInfo, error) {
	var resp SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/session", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout отзывает токен на сервере
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/logout", token, nil, &messageResponse{})
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response of %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error     string `json:"error"`
		ErrorType string `json:"error_type"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Type = payload.ErrorType
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
