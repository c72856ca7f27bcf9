// Package etherscan screens addresses by their transaction history on the
// Etherscan account API: volume, failure rate and counterparties on the
// sanctions list.
package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"walletreg/internal/screening/providers"
	id "walletreg/pkg/domain"
)

const (
	ProviderID = "etherscan"

	defaultBaseURL = "https://api.etherscan.io/v2/api"
	historyLimit   = 100
)

// Config configures the client. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	ChainID int64
	// RateLimitPerSec defaults to 2, below the free tier's 3 calls/sec.
	RateLimitPerSec int
	HTTPClient      *http.Client
	// Listed reports sanctioned addresses; counterparties are checked
	// against it.
	Listed func(id.WalletAddress) bool
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// History summarizes the most recent transactions of an address.
type History struct {
	BalanceWei     string   `json:"balance_wei"`
	TxCount        int      `json:"tx_count"`
	FailedCount    int      `json:"failed_count"`
	Counterparties int      `json:"counterparties"`
	Exposure       []string `json:"sanctioned_counterparties,omitempty"`
	FirstSeen      int64    `json:"first_seen,omitempty"`
	LastSeen       int64    `json:"last_seen,omitempty"`
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("etherscan API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = 1
	}
	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = 2
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), 1),
	}, nil
}

func (c *Client) ID() string           { return ProviderID }
func (c *Client) Kind() providers.Kind { return providers.KindAnalytics }

// accountResponse is the envelope of the account module:
//
//	{"status": "1", "message": "OK", "result": ...}
type accountResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type transaction struct {
	TimeStamp string `json:"timeStamp"`
	From      string `json:"from"`
	To        string `json:"to"`
	IsError   string `json:"isError"`
}

func (c *Client) Screen(ctx context.Context, address id.WalletAddress) (*providers.Finding, error) {
	var balance string
	if err := c.call(ctx, url.Values{
		"action":  {"balance"},
		"address": {address.String()},
		"tag":     {"latest"},
	}, &balance); err != nil {
		return nil, err
	}

	var txs []transaction
	if err := c.call(ctx, url.Values{
		"action":     {"txlist"},
		"address":    {address.String()},
		"startblock": {"0"},
		"endblock":   {"99999999"},
		"page":       {"1"},
		"offset":     {strconv.Itoa(historyLimit)},
		"sort":       {"desc"},
	}, &txs); err != nil {
		return nil, err
	}

	history := c.summarize(address, txs)
	history.BalanceWei = balance
	sanctioned := c.cfg.Listed != nil && c.cfg.Listed(address)
	score := scoreHistory(history, sanctioned)

	finding := &providers.Finding{
		ProviderID: ProviderID,
		Kind:       providers.KindAnalytics,
		Sanctioned: sanctioned,
		RiskScore:  score,
		RiskLevel:  providers.LevelForScore(score, sanctioned),
		Details:    history,
		Notes:      fmt.Sprintf("%d recent transactions, %d failed", history.TxCount, history.FailedCount),
		CheckedAt:  time.Now().UTC(),
	}
	if len(history.Exposure) > 0 {
		finding.Categories = append(finding.Categories, "sanctions_exposure")
	}
	return finding, nil
}

func (c *Client) summarize(address id.WalletAddress, txs []transaction) History {
	h := History{TxCount: len(txs)}
	seen := make(map[string]struct{})
	self := address.String()
	for _, tx := range txs {
		if tx.IsError == "1" {
			h.FailedCount++
		}
		if ts, err := strconv.ParseInt(tx.TimeStamp, 10, 64); err == nil {
			if h.FirstSeen == 0 || ts < h.FirstSeen {
				h.FirstSeen = ts
			}
			h.LastSeen = max(h.LastSeen, ts)
		}
		for _, party := range []string{tx.From, tx.To} {
			party = strings.ToLower(party)
			if party == "" || party == self {
				continue
			}
			if _, ok := seen[party]; ok {
				continue
			}
			seen[party] = struct{}{}
			if c.cfg.Listed == nil {
				continue
			}
			if counterparty, err := id.ParseWalletAddress(party); err == nil && c.cfg.Listed(counterparty) {
				h.Exposure = append(h.Exposure, party)
			}
		}
	}
	h.Counterparties = len(seen)
	return h
}

// scoreHistory grows with volume up to 40, adds 15 when more than a quarter
// of transactions failed and jumps to 80 on direct sanctions exposure.
func scoreHistory(h History, sanctioned bool) int {
	if sanctioned {
		return 100
	}
	score := min(10+h.TxCount/2, 40)
	if h.TxCount > 0 && h.FailedCount*4 > h.TxCount {
		score += 15
	}
	if len(h.Exposure) > 0 {
		score = max(score, 80)
	}
	return providers.ClampScore(score)
}

// call runs one account module action and decodes its result into out.
func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return providers.TransportError(ProviderID, err)
	}
	params.Set("chainid", strconv.FormatInt(c.cfg.ChainID, 10))
	params.Set("module", "account")
	params.Set("apikey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return providers.NewProviderError(providers.ErrorInternal, ProviderID, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return providers.TransportError(ProviderID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return providers.TransportError(ProviderID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return providers.NewProviderError(providers.CategoryForStatus(resp.StatusCode), ProviderID,
			fmt.Sprintf("etherscan returned HTTP %d", resp.StatusCode), nil)
	}

	var envelope accountResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return providers.NewProviderError(providers.ErrorBadData, ProviderID, "decode response", err)
	}
	if envelope.Status == "0" {
		return apiError(envelope)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return providers.NewProviderError(providers.ErrorBadData, ProviderID, "decode result", err)
	}
	if balance, ok := out.(*string); ok {
		if _, valid := new(big.Int).SetString(*balance, 10); !valid {
			return providers.NewProviderError(providers.ErrorBadData, ProviderID, "balance is not a decimal integer", nil)
		}
	}
	return nil
}

// apiError classifies a status "0" envelope. An address without history is
// reported that way too and is not an error.
func apiError(envelope accountResponse) error {
	if strings.EqualFold(envelope.Message, "No transactions found") {
		return nil
	}
	var detail string
	_ = json.Unmarshal(envelope.Result, &detail)
	lower := strings.ToLower(detail)
	switch {
	case strings.Contains(lower, "rate limit"):
		return providers.NewProviderError(providers.ErrorRateLimited, ProviderID, detail, nil)
	case strings.Contains(lower, "api key"):
		return providers.NewProviderError(providers.ErrorAuthentication, ProviderID, detail, nil)
	default:
		return providers.NewProviderError(providers.ErrorBadData, ProviderID,
			fmt.Sprintf("etherscan error: %s %s", envelope.Message, detail), nil)
	}
}
