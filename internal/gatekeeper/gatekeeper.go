package gatekeeper

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

	"CharacterChat/internal/config"
)

// Client проверяет личность и право доступа на стороне платформы.
// Отрицательное решение терминально: сессия не создаётся.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// Profile — данные пользователя, получаемые один раз на старте сессии.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type accessResponse struct {
	HasAccess bool `json:"has_access"`
}

func New(cfg config.GatekeeperConfig) *Client {
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Identify разрешает пользовательский токен в идентификатор пользователя.
func (c *Client) Identify(ctx context.Context, userToken string) (string, error) {
	if strings.TrimSpace(userToken) == "" {
		return "", errors.New("gatekeeper: empty user token")
	}
	var p Profile
	if err := c.get(ctx, "/me", userToken, &p); err != nil {
		return "", err
	}
	if p.ID == "" {
		return "", errors.New("gatekeeper: identity response has no user id")
	}
	return p.ID, nil
}

// CheckAccess возвращает решение платформы о доступе пользователя к опыту.
func (c *Client) CheckAccess(ctx context.Context, experienceID, userID string) (bool, error) {
	if strings.TrimSpace(experienceID) == "" || strings.TrimSpace(userID) == "" {
		return false, errors.New("gatekeeper: empty experience or user id")
	}
	var ar accessResponse
	path := fmt.Sprintf("/experiences/%s/users/%s/access", experienceID, userID)
	if err := c.get(ctx, path, c.apiKey, &ar); err != nil {
		return false, err
	}
	return ar.HasAccess, nil
}

// User возвращает профиль для отображаемого имени.
func (c *Client) User(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, "/users/"+userID, c.apiKey, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = p.Username
	}
	return &p, nil
}

func (c *Client) get(ctx context.Context, path string, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return fmt.Errorf("gatekeeper error: status=%d, body=%s", resp.StatusCode, bytes.TrimSpace(b))
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, 1<<20))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("gatekeeper: decode response: %w", err)
	}
	return nil
}
