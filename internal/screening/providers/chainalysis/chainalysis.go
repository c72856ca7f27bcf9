// Package chainalysis screens addresses with a Chainalysis-style risk API:
// one POST per address returning a score, a sanctions flag, categories and
// exposure.
package chainalysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"walletreg/internal/screening/providers"
	id "walletreg/pkg/domain"
)

const (
	ProviderID = "chainalysis"

	maxResponseBytes = 1 << 20
)

// Exposure is the share of funds linked to one category.
type Exposure struct {
	Type    string  `json:"type"`
	Percent float64 `json:"percent"`
}

type Config struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

var _ providers.Provider = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("chainalysis URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("chainalysis API key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

func (c *Client) ID() string           { return ProviderID }
func (c *Client) Kind() providers.Kind { return providers.KindAnalytics }

type screenRequest struct {
	Address string `json:"address"`
}

type screenResponse struct {
	RiskScore    *float64   `json:"riskScore"`
	SanctionsHit bool       `json:"sanctionsHit"`
	Categories   []string   `json:"categories"`
	Exposure     []Exposure `json:"exposure"`
}

func (c *Client) Screen(ctx context.Context, address id.WalletAddress) (*providers.Finding, error) {
	body, err := json.Marshal(screenRequest{Address: address.String()})
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, ProviderID, "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, ProviderID, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, providers.TransportError(ProviderID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, providers.TransportError(ProviderID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, providers.NewProviderError(providers.CategoryForStatus(resp.StatusCode), ProviderID,
			fmt.Sprintf("upstream returned HTTP %d", resp.StatusCode), nil)
	}

	var decoded screenResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "decode response", err)
	}

	// A missing score counts as zero.
	score := 0
	if decoded.RiskScore != nil {
		score = providers.ClampScore(int(*decoded.RiskScore))
	}
	if decoded.SanctionsHit {
		score = 100
	}
	exposure := decoded.Exposure
	if exposure == nil {
		exposure = []Exposure{}
	}
	return &providers.Finding{
		ProviderID: ProviderID,
		Kind:       providers.KindAnalytics,
		Sanctioned: decoded.SanctionsHit,
		RiskScore:  score,
		RiskLevel:  providers.LevelForScore(score, decoded.SanctionsHit),
		Categories: decoded.Categories,
		Details:    exposure,
		CheckedAt:  c.now().UTC(),
	}, nil
}
