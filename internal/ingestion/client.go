package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/middleware"

	"golang.org/x/time/rate"
)

// DefaultLimit is how many catalogue items a fetch keeps.
const DefaultLimit = 20

// ClientConfig configures the catalogue client.
type ClientConfig struct {
	URL string
	// Timeout for the request (default: 30s).
	Timeout time.Duration
	// RateLimit requests per second (default: 5).
	RateLimit float64
	// Sentinel replaces missing fields (default: "Desconocido").
	Sentinel string
	// Transport allows injecting a custom HTTP transport (for tests/stubs).
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// DefaultClientConfig returns a client config with sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:       "https://api.sampleapis.com/switch/games",
		Timeout:   30 * time.Second,
		RateLimit: 5,
		Sentinel:  domain.DefaultSentinel,
	}
}

// Client fetches game records from the catalogue API.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a rate-limited client whose round trips are logged.
func NewClient(config ClientConfig) *Client {
	defaults := DefaultClientConfig()
	if config.URL == "" {
		config.URL = defaults.URL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RateLimit <= 0 {
		config.RateLimit = defaults.RateLimit
	}
	if config.Sentinel == "" {
		config.Sentinel = defaults.Sentinel
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: middleware.LoggingTransport(config.Transport, logger),
		},
		rateLimiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		logger:      logger,
	}
}

// Fetch issues one GET and returns at most limit normalized records in response
// order. A non-2xx response is logged and yields an empty slice with a nil error.
func (c *Client) Fetch(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Info("fetching records from API", "url", c.config.URL, "limit", limit)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("API returned a non-success status, nothing fetched", "status", resp.StatusCode)
		return []domain.Record{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var items []map[string]any
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}

	records := make([]domain.Record, 0, min(limit, len(items)))
	for idx, item := range items {
		if idx >= limit {
			break
		}
		record, err := normalizeItem(item, c.config.Sentinel)
		if err != nil {
			c.logger.Warn("skipping API item", "position", idx, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func normalizeItem(item map[string]any, sentinel string) (domain.Record, error) {
	id, err := parseID(item["id"])
	if err != nil {
		return domain.Record{}, err
	}
	return domain.Record{
		ID:        id,
		Name:      normalizeField(item["name"], sentinel),
		Genre:     normalizeField(item["genre"], sentinel),
		Platforms: normalizeField(item["platforms"], sentinel),
		Year:      normalizeField(item["releaseYear"], sentinel),
	}, nil
}

func parseID(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("item has no id")
	case json.Number:
		if id, err := v.Int64(); err == nil {
			return id, nil
		}
		return 0, fmt.Errorf("item id %q is not an integer", v.String())
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("item id %q is not an integer", v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("item id %v is not an integer", v)
	}
}

// normalizeField flattens a loosely typed JSON value into text: lists are
// comma-joined, numbers lose any exponent and missing values become sentinel.
func normalizeField(raw any, sentinel string) string {
	switch v := raw.(type) {
	case nil:
		return sentinel
	case string:
		return v
	case json.Number:
		return formatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, elem := range v {
			if elem == nil {
				continue
			}
			parts = append(parts, normalizeField(elem, sentinel))
		}
		if len(parts) == 0 {
			return sentinel
		}
		return strings.Join(parts, ", ")
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return sentinel
		}
		return string(encoded)
	}
}

func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
