// Package client talks to the Node Academy API on behalf of a learner.
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
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"nodeacademy/internal/achievement"
	"nodeacademy/internal/logger"
	"nodeacademy/internal/models"
)

var (
	// ErrUnauthorized is returned when the API rejects the stored token. The
	// token has already been cleared.
	ErrUnauthorized = errors.New("not authorized, please log in again")
	// ErrNotLoggedIn is returned by calls that need a token when none is stored
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrRequestInFlight is returned while a previous CompleteLesson call is
	// still outstanding
	ErrRequestInFlight = errors.New("a lesson submission is already in progress")
)

// APIError is a non-2xx response decoded from the {"message","code"} body
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// User is the public view of an account
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Client calls the API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore

	submitting atomic.Bool
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenStore replaces the in-memory token store
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

// New creates a client for the API served at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokens:     &MemoryTokenStore{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", false, body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login exchanges credentials for a token and stores it
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", false, body, &out); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(out.Token); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout forgets the stored token
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// LoggedIn reports whether a token is stored
func (c *Client) LoggedIn() bool {
	token, err := c.tokens.Load()
	return err == nil && token != ""
}

// Verify returns the user behind the stored token
func (c *Client) Verify(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", true, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Profile returns the logged in user's profile
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Lessons lists the catalog
func (c *Client) Lessons(ctx context.Context) ([]models.LessonSummary, error) {
	var out []models.LessonSummary
	if err := c.do(ctx, http.MethodGet, "/api/lessons", false, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Lesson fetches one lesson including its test
func (c *Client) Lesson(ctx context.Context, id int) (*models.Lesson, error) {
	var out models.Lesson
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/lessons/%d", id), false, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Achievements lists every achievement that can be earned
func (c *Client) Achievements(ctx context.Context) ([]achievement.Definition, error) {
	var out []achievement.Definition
	if err := c.do(ctx, http.MethodGet, "/api/achievements", false, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CompleteLesson submits a score. Only one submission may be outstanding at a
// time; a second call returns ErrRequestInFlight without contacting the API.
func (c *Client) CompleteLesson(ctx context.Context, lessonID, score int) ([]achievement.ID, error) {
	if !c.submitting.CompareAndSwap(false, true) {
		return nil, ErrRequestInFlight
	}
	defer c.submitting.Store(false)

	var out struct {
		NewAchievements []achievement.ID `json:"newAchievements"`
	}
	path := fmt.Sprintf("/api/lessons/%d/complete", lessonID)
	if err := c.do(ctx, http.MethodPost, path, true, map[string]int{"score": score}, &out); err != nil {
		return nil, err
	}
	return out.NewAchievements, nil
}

// Progress fetches the logged in user's progress
func (c *Client) Progress(ctx context.Context) (*models.ProgressView, error) {
	var out models.ProgressView
	if err := c.do(ctx, http.MethodGet, "/api/user/progress", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	log := logger.FromContext(ctx).With(zap.String("method", method), zap.String("path", path))

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token, err := c.tokens.Load()
		if err != nil {
			return err
		}
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	log.Debug("response received", zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, auth)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response, auth bool) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	if auth && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		if err := c.tokens.Clear(); err != nil {
			return errors.Join(ErrUnauthorized, err)
		}
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	}
	return apiErr
}
