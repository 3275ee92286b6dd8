package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cmlabs-hris/field-attendance/internal/config"
	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/metrics"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Client talks to the HRIS backend attendance endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   *cache.Cache
	metrics *metrics.Metrics
}

// NewClient builds a client from the remote config. A zero CacheTTL disables history caching.
func NewClient(cfg config.RemoteConfig) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// WithMetrics records call latencies on m.
func (c *Client) WithMetrics(m *metrics.Metrics) *Client {
	c.metrics = m
	return c
}

// APIError is a failed call to the backend. StatusCode is 0 when the backend was unreachable.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("attendance API unreachable: %v", e.Err)
	}
	return fmt.Sprintf("attendance API error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// envelope mirrors the backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, headers map[string]string, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RemoteCall(strings.TrimPrefix(path, "/attendance/"), 0, time.Since(start))
		return &APIError{Err: err}
	}
	defer resp.Body.Close()
	c.metrics.RemoteCall(strings.TrimPrefix(path, "/attendance/"), resp.StatusCode, time.Since(start))

	slog.Debug("Attendance API call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN", Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 300 || (resp.StatusCode != http.StatusNoContent && !env.Success) {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN", Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// Submit implements attendance.RemoteAPI.
func (c *Client) Submit(ctx context.Context, payload attendance.SubmissionPayload) error {
	headers := map[string]string{}
	if payload.IdempotencyKey != "" {
		headers["Idempotency-Key"] = payload.IdempotencyKey
	}

	if err := c.do(ctx, http.MethodPost, "/attendance/mark", nil, payload, headers, nil); err != nil {
		return err
	}

	// A new mark changes what history returns.
	if c.cache != nil {
		c.cache.Flush()
	}
	return nil
}

// FetchHistory implements attendance.RemoteAPI.
func (c *Client) FetchHistory(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.AttendanceRecord, error) {
	query := url.Values{}
	if filter.EmployeeID != "" {
		query.Set("employee_id", filter.EmployeeID)
	}
	if filter.BranchID != "" {
		query.Set("branch_id", filter.BranchID)
	}
	if filter.StartDate != "" {
		query.Set("start_date", filter.StartDate)
	}
	if filter.EndDate != "" {
		query.Set("end_date", filter.EndDate)
	}

	key := "history?" + query.Encode()
	if cached, ok := c.cached(key); ok {
		return cached.([]attendance.AttendanceRecord), nil
	}

	records := make([]attendance.AttendanceRecord, 0)
	if err := c.do(ctx, http.MethodGet, "/attendance/history", query, nil, nil, &records); err != nil {
		return nil, err
	}

	c.remember(key, records)
	return records, nil
}

// FetchTeam implements attendance.RemoteAPI.
func (c *Client) FetchTeam(ctx context.Context, branchID string, date string) ([]attendance.EmployeeAttendance, error) {
	query := url.Values{}
	if branchID != "" {
		query.Set("branch_id", branchID)
	}
	query.Set("date", date)

	key := "team?" + query.Encode()
	if cached, ok := c.cached(key); ok {
		return cached.([]attendance.EmployeeAttendance), nil
	}

	team := make([]attendance.EmployeeAttendance, 0)
	if err := c.do(ctx, http.MethodGet, "/attendance/team", query, nil, nil, &team); err != nil {
		return nil, err
	}

	c.remember(key, team)
	return team, nil
}

func (c *Client) cached(key string) (interface{}, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Client) remember(key string, v interface{}) {
	if c.cache == nil {
		return
	}
	c.cache.SetDefault(key, v)
}
