package otter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/utils/logging"
	"github.com/createai-lab/createai/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const (
	defaultBaseURL = "https://otter.ai/forward/api/public"

	exportTimeout = 15 * time.Second
	testTimeout   = 10 * time.Second
)

// ProviderStatus classifies the outcome of a provider call so callers can
// tell "no transcripts" apart from "provider failed".
type ProviderStatus int

const (
	StatusOK ProviderStatus = iota
	StatusCredentialError                 // 401 / 403
	StatusRateLimited                     // 429
	StatusOutage                          // 5xx
	StatusNetworkError                    // timeout or transport failure
	StatusMalformedResponse
)

func (s ProviderStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusCredentialError:
		return "credential_error"
	case StatusRateLimited:
		return "rate_limited"
	case StatusOutage:
		return "outage"
	case StatusNetworkError:
		return "network_error"
	case StatusMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.TranscriptProvider = &Client{}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("otter API key is required")
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetSpeeches returns transcripts within [start, end]. Provider failures
// degrade to an empty result so a broken integration never blocks the
// pipeline; the failure is classified and logged.
func (c *Client) GetSpeeches(ctx context.Context, start, end time.Time) ([]*model.Transcript, error) {
	transcripts, status := c.Export(ctx)
	if status != StatusOK {
		logging.From(ctx).Warn("otter export degraded to empty result", "status", status.String())
		return []*model.Transcript{}, nil
	}

	var filtered []*model.Transcript
	for _, tr := range transcripts {
		if !start.IsZero() && tr.Date.Before(start) {
			continue
		}
		if !end.IsZero() && tr.Date.After(end) {
			continue
		}
		filtered = append(filtered, tr)
	}
	return filtered, nil
}

// GetAllSpeeches is the unfiltered debug variant.
func (c *Client) GetAllSpeeches(ctx context.Context) ([]*model.Transcript, error) {
	transcripts, status := c.Export(ctx)
	if status != StatusOK {
		logging.From(ctx).Warn("otter export degraded to empty result", "status", status.String())
		return []*model.Transcript{}, nil
	}
	return transcripts, nil
}

// Export fetches the speech export and reports how the call went. Newest
// first.
func (c *Client) Export(ctx context.Context) ([]*model.Transcript, ProviderStatus) {
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/speech/export?_t=%d", c.baseURL, time.Now().UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, StatusNetworkError
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, StatusNetworkError
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, StatusNetworkError
	}

	speeches, err := decodeSpeeches(body)
	if err != nil {
		return nil, StatusMalformedResponse
	}

	transcripts := make([]*model.Transcript, 0, len(speeches))
	seen := make(map[string]bool)
	for _, sp := range speeches {
		tr := sp.toModel()
		if seen[tr.ID] {
			continue
		}
		seen[tr.ID] = true
		transcripts = append(transcripts, tr)
	}

	sort.SliceStable(transcripts, func(i, j int) bool {
		return transcripts[i].Date.After(transcripts[j].Date)
	})

	return transcripts, StatusOK
}

// TestConnection verifies the API key against the account endpoint.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.Validate(ctx)
	return err
}

// Validate probes the account endpoint and classifies the outcome, so callers
// can tell a bad key (credential error) apart from a transient failure.
func (c *Client) Validate(ctx context.Context) (ProviderStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return StatusNetworkError, goerr.Wrap(err, "failed to create otter request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusNetworkError, goerr.Wrap(err, "otter connection test failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		providerStatus := classifyStatus(resp.StatusCode)
		return providerStatus, goerr.New("otter connection test returned non-OK status",
			goerr.V("status", resp.StatusCode),
			goerr.V("providerStatus", providerStatus.String()),
		)
	}
	return StatusOK, nil
}

func classifyStatus(code int) ProviderStatus {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return StatusCredentialError
	case code == http.StatusTooManyRequests:
		return StatusRateLimited
	case code >= 500:
		return StatusOutage
	default:
		return StatusMalformedResponse
	}
}
