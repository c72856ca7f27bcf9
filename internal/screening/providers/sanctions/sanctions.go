// Package sanctions screens wallet addresses against a sanctions list: a
// built-in set of designated addresses, optional local additions read from a
// JSON file, and an optional upstream screening API for everything else.
package sanctions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"walletreg/internal/screening/providers"
	id "walletreg/pkg/domain"
)

const (
	ProviderID = "ofac"
	listName   = "OFAC SDN"

	maxResponseBytes = 1 << 20
)

// Entry is one designated address.
type Entry struct {
	Address   string `json:"address"`
	Entity    string `json:"entity"`
	Reference string `json:"reference"`
	Network   string `json:"network,omitempty"`
	Asset     string `json:"asset,omitempty"`
}

// DefaultEntries are the Tornado Cash addresses designated in 2022.
var DefaultEntries = []Entry{
	{Address: "0x8576acc5c05d6ce88f4e49bf65bdf0c62f91353c", Entity: "Tornado Cash", Reference: "SDN-TORNADO-2022-01", Network: "ethereum", Asset: "ETH"},
	{Address: "0x7f367cc41522ce07553e823bf3be79a889debe1b", Entity: "Tornado Cash Router", Reference: "SDN-TORNADO-2022-02", Network: "ethereum", Asset: "ETH"},
	{Address: "0x68749665ff8d2d112fa859aa293f07a622782f38", Entity: "Tornado Cash Relayer", Reference: "SDN-TORNADO-2022-03", Network: "ethereum", Asset: "ETH"},
}

// Provider matches addresses against the list first and asks the upstream
// API, when configured, about anything the list does not hold.
type Provider struct {
	entries     map[id.WalletAddress]Entry
	upstreamURL string
	apiKey      string
	httpClient  *http.Client
	now         func() time.Time
}

var _ providers.Provider = (*Provider)(nil)

type Option func(*Provider) error

// WithListFile adds the entries of a JSON array file. Later entries replace
// earlier ones for the same address.
func WithListFile(path string) Option {
	return func(p *Provider) error {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read sanctions list: %w", err)
		}
		var entries []Entry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("parse sanctions list %s: %w", path, err)
		}
		return p.add(entries)
	}
}

// WithUpstream enables the screening API at url, called with a bearer key.
func WithUpstream(url, apiKey string) Option {
	return func(p *Provider) error {
		p.upstreamURL = url
		p.apiKey = apiKey
		return nil
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) error {
		if c != nil {
			p.httpClient = c
		}
		return nil
	}
}

// New builds a provider seeded with DefaultEntries.
func New(opts ...Option) (*Provider, error) {
	p := &Provider{
		entries:    make(map[id.WalletAddress]Entry),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
	if err := p.add(DefaultEntries); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Provider) add(entries []Entry) error {
	for _, e := range entries {
		address, err := id.ParseWalletAddress(e.Address)
		if err != nil {
			return fmt.Errorf("sanctions list entry %q: %w", e.Address, err)
		}
		p.entries[address] = e
	}
	return nil
}

func (p *Provider) ID() string           { return ProviderID }
func (p *Provider) Kind() providers.Kind { return providers.KindSanctions }

// Len is the number of listed addresses.
func (p *Provider) Len() int { return len(p.entries) }

func (p *Provider) HasUpstream() bool { return p.upstreamURL != "" }

// Listed reports whether address is on the local list. It never calls the
// upstream API.
func (p *Provider) Listed(address id.WalletAddress) bool {
	_, ok := p.entries[address]
	return ok
}

func (p *Provider) Screen(ctx context.Context, address id.WalletAddress) (*providers.Finding, error) {
	if entry, ok := p.entries[address]; ok {
		return p.finding([]providers.Match{{
			ListName:  listName,
			Entity:    entry.Entity,
			Score:     1,
			Reference: entry.Reference,
			Network:   entry.Network,
			Asset:     entry.Asset,
		}}, "matched a listed address"), nil
	}
	if !p.HasUpstream() {
		return p.finding(nil, "not on the local list; no upstream configured"), nil
	}
	matches, err := p.queryUpstream(ctx, address)
	if err != nil {
		return nil, err
	}
	return p.finding(matches, "screened by the upstream list"), nil
}

func (p *Provider) finding(matches []providers.Match, notes string) *providers.Finding {
	hit := len(matches) > 0
	score := 0
	if hit {
		score = 100
	}
	return &providers.Finding{
		ProviderID: ProviderID,
		Kind:       providers.KindSanctions,
		Sanctioned: hit,
		RiskScore:  score,
		RiskLevel:  providers.LevelForScore(score, hit),
		Matches:    matches,
		Notes:      notes,
		CheckedAt:  p.now().UTC(),
	}
}

type upstreamRequest struct {
	Query string `json:"query"`
}

type upstreamMatch struct {
	ListName  string  `json:"listName"`
	Entity    string  `json:"entity"`
	Score     float64 `json:"score"`
	Reference string  `json:"reference"`
}

type upstreamResponse struct {
	Matches []upstreamMatch `json:"matches"`
}

func (p *Provider) queryUpstream(ctx context.Context, address id.WalletAddress) ([]providers.Match, error) {
	body, err := json.Marshal(upstreamRequest{Query: address.String()})
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, ProviderID, "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.upstreamURL, bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, ProviderID, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
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

	var decoded upstreamResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "decode response", err)
	}
	matches := make([]providers.Match, 0, len(decoded.Matches))
	for _, m := range decoded.Matches {
		matches = append(matches, providers.Match{
			ListName:  m.ListName,
			Entity:    m.Entity,
			Score:     m.Score,
			Reference: m.Reference,
		})
	}
	return matches, nil
}
