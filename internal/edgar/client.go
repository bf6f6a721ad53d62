// Package edgar fetches company financial facts from the SEC EDGAR XBRL API
// and extracts yearly income records from them.
// API documentation: https://www.sec.gov/developer
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the SEC XBRL "frames" API host.
	DefaultBaseURL = "https://data.sec.gov"

	// conceptPath targets the net income concept used for funding decisions.
	// CIK is zero-padded to 10 digits per SEC conventions.
	conceptPath = "/api/xbrl/companyconcept/CIK%010d/us-gaap/NetIncomeLossAvailableToCommonStockholdersBasic.json"

	// DefaultUserAgent identifies us to the SEC, which rejects anonymous
	// clients. Override with a real contact address in production.
	DefaultUserAgent = "fora-financial/1.0 (funding@fora.example.com)"
)

// CompanyConcept is the SEC company-concept payload for a single XBRL tag.
// Facts are nested per reporting unit (e.g. "USD").
type CompanyConcept struct {
	CIK        int64             `json:"cik"`
	Taxonomy   string            `json:"taxonomy"`
	Tag        string            `json:"tag"`
	EntityName string            `json:"entityName"`
	Units      map[string][]Fact `json:"units"`
}

// Fact is one reported value for the concept.
type Fact struct {
	Start        string          `json:"start"`
	End          string          `json:"end"`
	Val          decimal.Decimal `json:"val"`
	FiscalYear   int             `json:"fy"`
	FiscalPeriod string          `json:"fp"`
	Form         string          `json:"form"`
	Frame        string          `json:"frame"`
}

// ClientConfig tunes the EDGAR client.
type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries uint64
}

// Client calls the SEC EDGAR XBRL API. Transient failures (network errors,
// timeouts, 429 and 5xx responses) are retried with exponential backoff and,
// once retries are exhausted, surfaced as "no data" rather than an error;
// anything unexpected propagates to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxRetries uint64
}

// NewClient creates an EDGAR client. Zero config fields fall back to
// defaults (30s timeout, 3 retries).
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
	}
}

// errTransient marks failures worth retrying.
var errTransient = errors.New("transient edgar failure")

// FetchNetIncome retrieves the net income concept for a CIK.
//
// Returns (nil, nil) when the SEC has no data for the company (404) or when
// transient failures persist past the retry budget. Context cancellation and
// unexpected responses return an error.
func (c *Client) FetchNetIncome(ctx context.Context, cik int64) (*CompanyConcept, error) {
	url := c.baseURL + fmt.Sprintf(conceptPath, cik)

	var payload *CompanyConcept
	operation := func() error {
		var err error
		payload, err = c.fetchOnce(ctx, url)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	err := backoff.Retry(operation, policy)
	switch {
	case err == nil:
		return payload, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, errTransient):
		slog.WarnContext(ctx, "EDGAR fetch gave up after retries, treating as no data",
			"cik", cik, "error", err)
		return nil, nil
	default:
		return nil, err
	}
}

func (c *Client) fetchOnce(ctx context.Context, url string) (*CompanyConcept, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	// SEC requires a User-Agent header
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		// No disclosure data for this company; not an error.
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: SEC returned status %d", errTransient, resp.StatusCode)
	default:
		return nil, backoff.Permanent(fmt.Errorf("SEC returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", errTransient, err)
	}

	var concept CompanyConcept
	if err := json.Unmarshal(body, &concept); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parse SEC response: %w", err))
	}
	return &concept, nil
}
