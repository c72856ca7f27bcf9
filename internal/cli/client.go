package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	id "walletreg/pkg/domain"
)

// APIError is a non-2xx reply from the registry.
type APIError struct {
	Status      int
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Description)
	}
	return fmt.Sprintf("%s (%d)", e.Code, e.Status)
}

// Client calls the registry HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type RegistryState struct {
	Owner              string `json:"owner"`
	TotalVerifications uint64 `json:"total_verifications"`
}

type Verification struct {
	WalletAddress string    `json:"wallet_address"`
	RiskScore     uint8     `json:"risk_score"`
	RiskLevel     string    `json:"risk_level"`
	VerifiedAt    time.Time `json:"verified_at"`
	VerifiedBy    string    `json:"verified_by"`
	IsSanctioned  bool      `json:"is_sanctioned"`
}

// VerifyInput is one verification to submit.
type VerifyInput struct {
	WalletAddress string `json:"wallet_address"`
	RiskScore     int    `json:"risk_score"`
	RiskLevel     string `json:"risk_level"`
	IsSanctioned  bool   `json:"is_sanctioned"`
}

type BatchResult struct {
	Submitted int    `json:"submitted"`
	Applied   uint64 `json:"applied"`
}

type WalletStatus struct {
	WalletAddress string `json:"wallet_address"`
	Verified      bool   `json:"verified"`
}

type LookupResult struct {
	Verifications map[string]Verification `json:"verifications"`
	Missing       []string                `json:"missing"`
}

type Stats struct {
	TotalVerifications uint64 `json:"total_verifications"`
}

type ownerReply struct {
	Owner string `json:"owner"`
}

func (c *Client) Construct(ctx context.Context) (*RegistryState, error) {
	var out RegistryState
	return &out, c.do(ctx, http.MethodPost, "/registry", nil, &out)
}

func (c *Client) Verify(ctx context.Context, in VerifyInput) (*Verification, error) {
	var out Verification
	return &out, c.do(ctx, http.MethodPost, "/verifications", in, &out)
}

func (c *Client) VerifyBatch(ctx context.Context, entries []VerifyInput) (*BatchResult, error) {
	var out BatchResult
	body := struct {
		Entries []VerifyInput `json:"entries"`
	}{Entries: entries}
	return &out, c.do(ctx, http.MethodPost, "/verifications/batch", body, &out)
}

func (c *Client) Get(ctx context.Context, address string) (*Verification, error) {
	var out Verification
	return &out, c.do(ctx, http.MethodGet, "/verifications/"+url.PathEscape(address), nil, &out)
}

func (c *Client) Status(ctx context.Context, address string) (*WalletStatus, error) {
	var out WalletStatus
	return &out, c.do(ctx, http.MethodGet, "/verifications/"+url.PathEscape(address)+"/status", nil, &out)
}

func (c *Client) Lookup(ctx context.Context, addresses []string) (*LookupResult, error) {
	var out LookupResult
	body := struct {
		WalletAddresses []string `json:"wallet_addresses"`
	}{WalletAddresses: addresses}
	return &out, c.do(ctx, http.MethodPost, "/verifications/lookup", body, &out)
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	return &out, c.do(ctx, http.MethodGet, "/registry/stats", nil, &out)
}

func (c *Client) Owner(ctx context.Context) (string, error) {
	var out ownerReply
	err := c.do(ctx, http.MethodGet, "/registry/owner", nil, &out)
	return out.Owner, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+id.CurrentAPIVersion().RoutePrefix()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
