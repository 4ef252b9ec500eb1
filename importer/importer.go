// Package importer pulls pool hiring targets from an external demand feed
// and maps them onto replacement pools.
package importer

import (
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

	"capacity-planner/curve"
	apperrors "capacity-planner/errors"
	"capacity-planner/metrics"
	"capacity-planner/models"
	"capacity-planner/workspace"

	"github.com/google/uuid"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// Kind classifies a sync failure.
type Kind string

const (
	KindNetwork Kind = "network"
	KindServer  Kind = "server"
	KindPayload Kind = "payload"
)

// SyncError represents a failed demand sync.
type SyncError struct {
	Kind    Kind
	URL     string
	Message string
	Cause   error
}

func (e *SyncError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sync %s error for %s: %s: %v", e.Kind, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("sync %s error for %s: %s", e.Kind, e.URL, e.Message)
}

func (e *SyncError) Unwrap() error {
	return e.Cause
}

// Record is one demand line from the feed.
type Record struct {
	PoolName      string
	TotalQuantity float64
}

// Client fetches demand records over HTTP.
type Client struct {
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// NewClient creates a Client with DefaultTimeout.
func NewClient(opts ...Option) *Client {
	c := &Client{http: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the feed at rawURL. The body may be a JSON array of
// records or a single record object.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]Record, error) {
	records, err := c.fetch(ctx, rawURL)
	if err != nil {
		outcome := string(KindNetwork)
		var se *SyncError
		if errors.As(err, &se) {
			outcome = string(se.Kind)
		}
		metrics.SyncRequestsTotal.WithLabelValues(outcome).Inc()
		return nil, err
	}
	metrics.SyncRequestsTotal.WithLabelValues("ok").Inc()
	return records, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]Record, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &SyncError{Kind: KindNetwork, URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &SyncError{Kind: KindNetwork, URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SyncError{Kind: KindNetwork, URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SyncError{Kind: KindServer, URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SyncError{Kind: KindNetwork, URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	records, err := Decode(body)
	if err != nil {
		return nil, &SyncError{Kind: KindPayload, URL: rawURL, Message: "malformed payload", Cause: err}
	}
	if len(records) == 0 {
		return nil, &SyncError{Kind: KindPayload, URL: rawURL, Message: "empty payload", Cause: apperrors.ErrNoRecords}
	}
	return records, nil
}

// Decode parses a feed body. Pool names are read from pool_name, poolName or
// name; totals from total_quantity, totalQuantity, total or quantity, as a
// number or a numeric string. Entries without a name are skipped; a named
// entry without a total is an ErrInvalidDemand error.
func Decode(body []byte) ([]Record, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, nil
	}

	var raw []map[string]any
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return nil, err
		}
	} else {
		var one map[string]any
		if err := json.Unmarshal([]byte(trimmed), &one); err != nil {
			return nil, err
		}
		raw = append(raw, one)
	}

	records := make([]Record, 0, len(raw))
	for i, m := range raw {
		name := strings.TrimSpace(firstString(m, "pool_name", "poolName", "name"))
		if name == "" {
			continue
		}
		total, err := firstNumber(m, "total_quantity", "totalQuantity", "total", "quantity")
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, name, err)
		}
		records = append(records, Record{PoolName: name, TotalQuantity: total})
	}
	return records, nil
}

// MapRecords turns records into fresh pools with a flat curve over
// hiringDuration weeks, palette colours in order and unpinned zero TPs.
func MapRecords(records []Record, hiringDuration int) []models.Scenario {
	pools := make([]models.Scenario, 0, len(records))
	for i, r := range records {
		pools = append(pools, models.Scenario{
			ID:             uuid.NewString(),
			Name:           r.PoolName,
			Demand:         curve.Generate(curve.Flat, hiringDuration, r.TotalQuantity),
			Color:          models.ColorFor(i),
			TalentPartners: models.Auto(0.0),
		})
	}
	return pools
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstNumber(m map[string]any, keys ...string) (float64, error) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		var n float64
		switch t := v.(type) {
		case float64:
			n = t
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %s=%q", apperrors.ErrInvalidDemand, k, t)
			}
			n = f
		default:
			return 0, fmt.Errorf("%w: %s has type %T", apperrors.ErrInvalidDemand, k, v)
		}
		if n < 0 {
			return 0, fmt.Errorf("%w: %s=%v", apperrors.ErrInvalidDemand, k, n)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: missing total, want one of %s", apperrors.ErrInvalidDemand, strings.Join(keys, ", "))
}

// Sync fetches the feed and replaces the workspace pools with the mapped
// records. The workspace is left untouched on any failure.
func (c *Client) Sync(ctx context.Context, ws *workspace.Workspace, rawURL string) ([]models.Scenario, error) {
	records, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	pools := MapRecords(records, ws.Config().HiringDuration)
	if err := ws.ReplacePools(pools); err != nil {
		return nil, err
	}
	return ws.Pools(), nil
}
