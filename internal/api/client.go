// Package api — HTTP-клиент удалённого API ресторанов и заказов.
package api

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
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
	"github.com/vladislavdragonenkov/rahmet/internal/version"
)

const (
	defaultTimeout = 15 * time.Second
	// maxErrorBody ограничивает чтение тела ошибочного ответа.
	maxErrorBody = 64 << 10
)

// Error — ошибка, которую вернул удалённый API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient задаёт http.Client (например, для тестов).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithTimeout задаёт таймаут запросов для клиента по умолчанию.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger задаёт logger клиента.
func WithLogger(logger *log.Entry) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client обращается к /api/restaurants и /api/orders.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	retry   RetryConfig
	logger  *log.Entry
}

// NewClient создаёт клиент для baseURL вида http://host:port.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must include scheme and host", baseURL)
	}

	c := &Client{
		baseURL: u,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = log.WithField("component", "api-client")
	}
	return c, nil
}

// BaseURL возвращает адрес API.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListRestaurants возвращает список ресторанов.
func (c *Client) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	var restaurants []domain.Restaurant
	if err := c.doWithRetry(ctx, http.MethodGet, "/api/restaurants", nil, &restaurants); err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return restaurants, nil
}

// GetRestaurant возвращает ресторан по ID или domain.ErrRestaurantNotFound.
func (c *Client) GetRestaurant(ctx context.Context, id int64) (domain.Restaurant, error) {
	var restaurant domain.Restaurant
	err := c.doWithRetry(ctx, http.MethodGet, "/api/restaurants/"+strconv.FormatInt(id, 10), nil, &restaurant)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return domain.Restaurant{}, fmt.Errorf("restaurant %d: %w", id, domain.ErrRestaurantNotFound)
		}
		return domain.Restaurant{}, fmt.Errorf("get restaurant %d: %w", id, err)
	}
	return restaurant, nil
}

// ListProducts возвращает меню ресторана.
func (c *Client) ListProducts(ctx context.Context, restaurantID int64) ([]domain.Product, error) {
	var products []domain.Product
	path := "/api/restaurants/" + strconv.FormatInt(restaurantID, 10) + "/products"
	if err := c.doWithRetry(ctx, http.MethodGet, path, nil, &products); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("restaurant %d: %w", restaurantID, domain.ErrRestaurantNotFound)
		}
		return nil, fmt.Errorf("list products of restaurant %d: %w", restaurantID, err)
	}
	return products, nil
}

type orderResponse struct {
	Message string `json:"message"`
}

// SubmitOrder отправляет заказ и возвращает текст подтверждения.
func (c *Client) SubmitOrder(ctx context.Context, req domain.OrderRequest) (string, error) {
	if req.Products == nil {
		req.Products = []domain.OrderProduct{}
	}

	var resp orderResponse
	if err := c.doWithRetry(ctx, http.MethodPost, "/api/orders", req, &resp); err != nil {
		return "", fmt.Errorf("submit order: %w", err)
	}

	c.logger.WithFields(log.Fields{
		"products": len(req.Products),
		"message":  resp.Message,
	}).Debug("order accepted by api")
	return resp.Message, nil
}

// Ping проверяет доступность API, используется health-проверками.
// Ping выполняет одну попытку без повторов.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/restaurants", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(log.Fields{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeResponseError{method: method, path: path, err: err}
	}
	return nil
}

type decodeResponseError struct {
	method, path string
	err          error
}

func (e *decodeResponseError) Error() string {
	return fmt.Sprintf("decode %s %s response: %v", e.method, e.path, e.err)
}

func (e *decodeResponseError) Unwrap() error { return e.err }

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &Error{StatusCode: resp.StatusCode}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Message = payload.Error
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func isStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

var (
	_ domain.Catalog        = (*Client)(nil)
	_ domain.OrderSubmitter = (*Client)(nil)
)
