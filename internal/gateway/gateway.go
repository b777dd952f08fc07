// Package gateway implements the HTTP client for the URL shortener backend.
// Every failure crossing this boundary is classified into the error taxonomy
// defined in the entity package; raw transport errors never escape.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vadimbarashkov/url-shortener-client/internal/entity"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client performs authenticated calls against the backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// linkPayload mirrors the backend's link serialization.
type linkPayload struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	CustomAlias string    `json:"custom_alias"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *linkPayload) toEntity() entity.Link {
	return entity.Link{
		ID:          p.ID,
		OriginalURL: p.OriginalURL,
		CustomAlias: p.CustomAlias,
		ShortCode:   p.ShortCode,
		ShortURL:    normalizeShortURL(p.ShortURL),
		Clicks:      p.Clicks,
		CreatedAt:   p.CreatedAt,
	}
}

// normalizeShortURL rewrites the API-prefixed short URL reported by the
// backend into its public redirect form.
func normalizeShortURL(shortURL string) string {
	return strings.Replace(shortURL, "/api/", "/", 1)
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, payload any) (*http.Request, error) {
	var body *bytes.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	return req, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	const op = "gateway.Client.Register"

	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/register/", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, &entity.TransportError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %w", op, classifyResponse(resp))
	}

	return nil
}

// Login exchanges credentials for an auth token. The backend reports the
// token under either "token" or "key".
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	const op = "gateway.Client.Login"

	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/login/", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, &entity.TransportError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %w", op, classifyResponse(resp))
	}

	var body struct {
		Token string `json:"token"`
		Key   string `json:"key"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%s: %w", op, &entity.TransportError{Err: err})
	}

	token := body.Token
	if token == "" {
		token = body.Key
	}
	if token == "" {
		return "", fmt.Errorf("%s: %w", op, &entity.TransportError{Err: fmt.Errorf("no token in login response")})
	}

	return token, nil
}

// VerifyToken checks the credential against the backend and returns the
// owning user's profile.
func (c *Client) VerifyToken(ctx context.Context, token string) (*entity.UserProfile, error) {
	const op = "gateway.Client.VerifyToken"

	req, err := c.newRequest(ctx, http.MethodPost, "/api/verify-token/", token, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &entity.TransportError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", op, classifyResponse(resp))
	}

	var body struct {
		User struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &entity.TransportError{Err: err})
	}

	return &entity.UserProfile{
		ID:       body.User.ID,
		Username: body.User.Username,
	}, nil
}

// ListLinks fetches the authenticated user's link collection.
func (c *Client) ListLinks(ctx context.Context, token string) ([]entity.Link, error) {
	const op = "gateway.Client.ListLinks"

	req, err := c.newRequest(ctx, http.MethodGet, "/api/links/", token, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &entity.TransportError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", op, classifyResponse(resp))
	}

	var payloads []linkPayload

	if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &entity.TransportError{Err: err})
	}

	links := make([]entity.Link, 0, len(payloads))
	for i := range payloads {
		links = append(links, payloads[i].toEntity())
	}

	return links, nil
}

// CreateLink shortens a URL. The token is optional: anonymous creation is
// allowed by the backend, but the resulting link is only returned once.
func (c *Client) CreateLink(ctx context.Context, token, originalURL, customAlias string) (*entity.Link, error) {
	const op = "gateway.Client.CreateLink"

	req, err := c.newRequest(ctx, http.MethodPost, "/api/links/", token, map[string]string{
		"original_url": originalURL,
		"custom_alias": customAlias,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &entity.TransportError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", op, classifyResponse(resp))
	}

	var payload linkPayload

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &entity.TransportError{Err: err})
	}

	link := payload.toEntity()
	return &link, nil
}

// DeleteLink removes a link by id.
func (c *Client) DeleteLink(ctx context.Context, token string, id int64) error {
	const op = "gateway.Client.DeleteLink"

	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/links/%d/", id), token, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, &entity.TransportError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %w", op, classifyResponse(resp))
	}

	return nil
}
