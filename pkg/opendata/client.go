package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/civilnews/civic-engine/pkg/apperrors"
	"github.com/civilnews/civic-engine/pkg/retry"
)

// Client talks to an Opendatasoft Explore v2.1 catalog.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryCfg   *retry.Config
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retry.DefaultConfig(),
		logger:     logger.Named("opendata"),
	}
}

// FetchRecords pulls one page of records from a dataset. The response body
// must be a JSON object carrying a "results" array; anything else is a bad
// response, no matter the status code.
func (c *Client) FetchRecords(ctx context.Context, dataset string, limit, offset int, orderBy string) ([]any, error) {
	endpoint, err := c.recordsURL(dataset, limit, offset, orderBy)
	if err != nil {
		return nil, err
	}

	return retry.DoWithResult(ctx, c.retryCfg, func() ([]any, error) {
		return c.fetchPage(ctx, dataset, endpoint)
	})
}

func (c *Client) recordsURL(dataset string, limit, offset int, orderBy string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}
	base = base.JoinPath("catalog", "datasets", dataset, "records")

	query := base.Query()
	query.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if orderBy != "" {
		query.Set("order_by", orderBy)
	}
	base.RawQuery = query.Encode()
	return base.String(), nil
}

func (c *Client) fetchPage(ctx context.Context, dataset, endpoint string) ([]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", dataset, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", dataset, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", dataset, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned HTTP %d: %w", dataset, resp.StatusCode, apperrors.ErrBadResponse)
	}

	var envelope struct {
		Results *[]any `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%s returned malformed JSON: %w", dataset, apperrors.ErrBadResponse)
	}
	if envelope.Results == nil {
		return nil, fmt.Errorf("%s response missing results array: %w", dataset, apperrors.ErrBadResponse)
	}

	c.logger.Debug("fetched records",
		zap.String("dataset", dataset),
		zap.Int("count", len(*envelope.Results)))
	return *envelope.Results, nil
}
