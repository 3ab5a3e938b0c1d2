// Package client is a Go client for the storefront HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/filter"
	"storefront/models"
	"storefront/utils"
)

// ErrTransport wraps failures that persisted through every retry: network
// errors and 5xx responses.
var ErrTransport = errors.New("storefront: transport error")

// APIError is a 4xx response.
type APIError struct {
	Status  int
	Message string
	Fields  []utils.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("storefront: %d %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("storefront: %d %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

type Client struct {
	baseURL string
	timeout time.Duration
	retries int
	log     *slog.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetries sets how many times a failed request is retried. The default
// is one retry.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 10 * time.Second,
		retries: 1,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products lists one page. Absent criteria are left out of the query string.
func (c *Client) Products(ctx context.Context, criteria filter.Criteria) (models.ProductsResponse, error) {
	var out models.ProductsResponse
	err := c.do(ctx, fiber.MethodGet, withQuery("/products", criteria), nil, "", &out)
	return out, err
}

func (c *Client) Facets(ctx context.Context, criteria filter.Criteria) (models.FacetsResponse, error) {
	var out models.FacetsResponse
	err := c.do(ctx, fiber.MethodGet, withQuery("/products/facets", criteria), nil, "", &out)
	return out, err
}

// Product fetches the full record. A 404 is reported as false with a nil
// error.
func (c *Client) Product(ctx context.Context, id string) (*models.Product, bool, error) {
	var out models.Product
	err := c.do(ctx, fiber.MethodGet, "/products/"+url.PathEscape(id), nil, "", &out)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

func (c *Client) Recommendations(ctx context.Context, id string) ([]models.Product, error) {
	var out []models.Product
	err := c.do(ctx, fiber.MethodGet, "/products/"+url.PathEscape(id)+"/recommendations", nil, "", &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, fiber.MethodPost, "/auth/register", req, "", &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, fiber.MethodPost, "/auth/login", req, "", &out)
	return out, err
}

func (c *Client) Me(ctx context.Context, token string) (models.PublicUser, error) {
	var out models.PublicUser
	err := c.do(ctx, fiber.MethodGet, "/auth/me", nil, token, &out)
	return out, err
}

func withQuery(path string, criteria filter.Criteria) string {
	if q := criteria.Values().Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	target := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 0 {
			c.log.DebugContext(ctx, "retrying request", "method", method, "path", path, "attempt", attempt, "error", lastErr)
		}

		code, data, err := c.send(ctx, method, target, body, token)
		switch {
		case err != nil:
			lastErr = err
		case code >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("server returned %d", code)
		case code >= http.StatusBadRequest:
			return decodeAPIError(code, data)
		default:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decode %s %s: %w", method, path, err)
			}
			return nil
		}
	}

	return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, lastErr)
}

func (c *Client) send(ctx context.Context, method, target string, body any, token string) (int, []byte, error) {
	var a *fiber.Agent
	if method == fiber.MethodPost {
		a = fiber.Post(target)
	} else {
		a = fiber.Get(target)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	a.Timeout(timeout)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		a.JSON(body)
	}

	code, data, errs := a.Bytes()
	if len(errs) > 0 {
		return 0, nil, errors.Join(errs...)
	}
	return code, data, nil
}

func decodeAPIError(code int, data []byte) error {
	var body struct {
		Error  string             `json:"error"`
		Errors []utils.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(code)
	}
	return &APIError{Status: code, Message: body.Error, Fields: body.Errors}
}
