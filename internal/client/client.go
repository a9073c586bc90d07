// Package client talks to the cooksync REST API on behalf of the
// terminal app.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/hammamikhairi/cooksync/internal/api"
	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/engine"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// APIError is a non-2xx response. It unwraps to the matching domain error.
type APIError struct {
	Status int
	Detail string
	Fields map[string]string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusNotImplemented:
		return domain.ErrNotImplemented
	default:
		return nil
	}
}

// Option configures the Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the HTTP client, e.g. with a test server's.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// Client is a cooksync API client. Dish lists are cached so the app keeps
// working from the last good copy while the server is unreachable.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger

	mu     sync.Mutex
	dishes []*domain.Dish
	cached bool
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Dishes fetches the dish list. When the server cannot be reached the
// last fetched list is returned instead.
func (c *Client) Dishes(ctx context.Context) ([]*domain.Dish, error) {
	var dishes []*domain.Dish
	err := c.do(ctx, http.MethodGet, "/api/dishes", nil, &dishes)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			if cached, ok := c.cachedDishes(); ok {
				c.log.Warn("client: %v, using %d cached dishes", err, len(cached))
				return cached, nil
			}
		}
		return nil, err
	}

	c.mu.Lock()
	c.dishes = dishes
	c.cached = true
	c.mu.Unlock()
	return dishes, nil
}

func (c *Client) cachedDishes() ([]*domain.Dish, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cached {
		return nil, false
	}
	return append([]*domain.Dish(nil), c.dishes...), true
}

// AddDish creates a dish.
func (c *Client) AddDish(ctx context.Context, in engine.DishInput) (*domain.Dish, error) {
	var dish domain.Dish
	if err := c.do(ctx, http.MethodPost, "/api/dishes", in, &dish); err != nil {
		return nil, err
	}
	return &dish, nil
}

// UpdateDishTime changes a dish's cooking time.
func (c *Client) UpdateDishTime(ctx context.Context, id string, minutes int) (*domain.Dish, error) {
	path := "/api/dishes/" + url.PathEscape(id) + "?cookingTime=" + strconv.Itoa(minutes)
	var dish domain.Dish
	if err := c.do(ctx, http.MethodPatch, path, nil, &dish); err != nil {
		return nil, err
	}
	return &dish, nil
}

// RemoveDish deletes a dish.
func (c *Client) RemoveDish(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/dishes/"+url.PathEscape(id), nil, nil)
}

// ClearDishes deletes every dish and reports how many were removed.
func (c *Client) ClearDishes(ctx context.Context) (int, error) {
	var resp api.DeletedResponse
	if err := c.do(ctx, http.MethodDelete, "/api/dishes", nil, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

// Tasks fetches the task list.
func (c *Client) Tasks(ctx context.Context) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// AddTask creates a task.
func (c *Client) AddTask(ctx context.Context, in engine.TaskInput) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskTime changes a task's duration, or its offset for a trigger task.
func (c *Client) UpdateTaskTime(ctx context.Context, id string, minutes int) (*domain.Task, error) {
	path := "/api/tasks/" + url.PathEscape(id) + "?minutes=" + strconv.Itoa(minutes)
	var task domain.Task
	if err := c.do(ctx, http.MethodPatch, path, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// RemoveTask deletes a task.
func (c *Client) RemoveTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// ClearTasks deletes every task and reports how many were removed.
func (c *Client) ClearTasks(ctx context.Context) (int, error) {
	var resp api.DeletedResponse
	if err := c.do(ctx, http.MethodDelete, "/api/tasks", nil, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

// CalculatePlan asks the server for a plan cooked with the given appliance.
func (c *Client) CalculatePlan(ctx context.Context, appliance domain.ApplianceType) (*domain.Plan, error) {
	var resp api.PlanResponse
	req := api.PlanRequest{UserApplianceType: string(appliance)}
	if err := c.do(ctx, http.MethodPost, "/api/cooking-plan/calculate", req, &resp); err != nil {
		return nil, err
	}
	return resp.Plan(), nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug("client: %s %s", method, path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e api.ErrorResponse
		if json.Unmarshal(respBody, &e) == nil {
			apiErr.Detail = e.Detail
			apiErr.Fields = e.Fields
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("client: unmarshal response: %w", err)
	}
	return nil
}
