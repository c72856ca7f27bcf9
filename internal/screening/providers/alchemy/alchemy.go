// Package alchemy scores wallet activity read from an Ethereum JSON-RPC node
// with the Alchemy enhanced APIs: balance, code, recent transfers and token
// holdings.
package alchemy

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"

	"walletreg/internal/screening/providers"
	id "walletreg/pkg/domain"
)

const (
	ProviderID = "alchemy"

	// previewSize bounds the transfers and token balances returned as details.
	previewSize = 5

	incomingTransferLimit = "0x28"
	outgoingTransferLimit = "0x5"
)

var (
	// oneEther is the balance above which an active contract is treated as a
	// block builder.
	oneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	knownBuilders = addressSet(
		"0x690b9a9e9aa1c9db991c7721a92d351db4fac990",
		"0x81beef03aafd3dd33ffd7deb337407142c80fea3",
		"0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5",
		"0x4838b106fce9647bdf1e7877bf73ce8b0bad5f97",
	)

	// wellKnown wallets are capped at a low score.
	wellKnown = addressSet(
		"0xab5801a7d398351b8be11c439e05c5b3259aec9b",
		"0x000000000000000000000000000000000000dEaD",
		"0x3f5CE5FBFe3E9af3971dD833D26bA9b5C936f0bE",
		"0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D",
	)
)

func addressSet(hex ...string) map[id.WalletAddress]struct{} {
	set := make(map[id.WalletAddress]struct{}, len(hex))
	for _, h := range hex {
		set[id.MustWalletAddress(h)] = struct{}{}
	}
	return set
}

// Transfer is one asset transfer in the activity preview.
type Transfer struct {
	Hash     string   `json:"hash,omitempty"`
	Category string   `json:"category,omitempty"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Value    *float64 `json:"value,omitempty"`
	Asset    string   `json:"asset,omitempty"`
}

// TokenBalance is one non-zero ERC-20 holding.
type TokenBalance struct {
	ContractAddress string `json:"contract_address"`
	TokenBalance    string `json:"token_balance"`
}

// Activity is the Details payload of an Alchemy finding.
type Activity struct {
	BalanceWei       string         `json:"balance_wei"`
	IsContract       bool           `json:"is_contract"`
	TransferCount    int            `json:"transfer_count"`
	OutgoingCount    int            `json:"outgoing_count"`
	Builder          bool           `json:"builder"`
	WellKnown        bool           `json:"well_known"`
	TransfersPreview []Transfer     `json:"transfers_preview"`
	ERC20Balances    []TokenBalance `json:"erc20_balances"`
}

// Provider implements providers.Provider over an ethclient connection.
type Provider struct {
	client     *ethclient.Client
	sanctioned func(id.WalletAddress) bool
	logger     *slog.Logger
	now        func() time.Time
}

var _ providers.Provider = (*Provider)(nil)

type Option func(*Provider)

// WithSanctionsList marks addresses the list reports as sanctioned.
func WithSanctionsList(listed func(id.WalletAddress) bool) Option {
	return func(p *Provider) {
		if listed != nil {
			p.sanctioned = listed
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Dial connects to the JSON-RPC endpoint at url, for example
// https://eth-mainnet.g.alchemy.com/v2/<key>.
func Dial(ctx context.Context, url string, opts ...Option) (*Provider, error) {
	if url == "" {
		return nil, errors.New("alchemy URL is required")
	}
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorNotConfigured, ProviderID, "dial node", err)
	}
	return New(client, opts...), nil
}

func New(client *ethclient.Client, opts ...Option) *Provider {
	p := &Provider{
		client:     client,
		sanctioned: func(id.WalletAddress) bool { return false },
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) ID() string           { return ProviderID }
func (p *Provider) Kind() providers.Kind { return providers.KindAnalytics }

func (p *Provider) Close() {
	p.client.Close()
}

type assetTransfersParams struct {
	FromBlock        string   `json:"fromBlock"`
	ToBlock          string   `json:"toBlock"`
	FromAddress      string   `json:"fromAddress,omitempty"`
	ToAddress        string   `json:"toAddress,omitempty"`
	Category         []string `json:"category"`
	WithMetadata     bool     `json:"withMetadata"`
	ExcludeZeroValue bool     `json:"excludeZeroValue"`
	MaxCount         string   `json:"maxCount"`
}

type assetTransfer struct {
	Hash     string   `json:"hash"`
	UniqueID string   `json:"uniqueId"`
	Category string   `json:"category"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Value    *float64 `json:"value"`
	Asset    string   `json:"asset"`
}

type assetTransfersResult struct {
	Transfers []assetTransfer `json:"transfers"`
}

type tokenBalancesResult struct {
	TokenBalances []struct {
		ContractAddress string `json:"contractAddress"`
		TokenBalance    string `json:"tokenBalance"`
	} `json:"tokenBalances"`
}

// Screen reads balance and code, which must succeed, and the transfer and
// token history, which degrades to empty on failure.
func (p *Provider) Screen(ctx context.Context, address id.WalletAddress) (*providers.Finding, error) {
	account := common.Address(address)
	var (
		balance  *big.Int
		code     []byte
		incoming assetTransfersResult
		outgoing assetTransfersResult
		tokens   tokenBalancesResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = p.client.BalanceAt(gctx, account, nil)
		return err
	})
	g.Go(func() error {
		var err error
		code, err = p.client.CodeAt(gctx, account, nil)
		return err
	})
	g.Go(func() error {
		p.bestEffort(gctx, &incoming, "alchemy_getAssetTransfers", assetTransfersParams{
			FromBlock:        "0x0",
			ToBlock:          "latest",
			ToAddress:        address.String(),
			Category:         []string{"external", "internal", "erc20", "erc721", "erc1155"},
			ExcludeZeroValue: true,
			MaxCount:         incomingTransferLimit,
		})
		return nil
	})
	g.Go(func() error {
		p.bestEffort(gctx, &outgoing, "alchemy_getAssetTransfers", assetTransfersParams{
			FromBlock:   "0x0",
			ToBlock:     "latest",
			FromAddress: address.String(),
			Category:    []string{"external"},
			MaxCount:    outgoingTransferLimit,
		})
		return nil
	})
	g.Go(func() error {
		p.bestEffort(gctx, &tokens, "alchemy_getTokenBalances", address.String(), "erc20")
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, providers.TransportError(ProviderID, err)
	}

	activity := Activity{
		BalanceWei:       balance.String(),
		IsContract:       len(code) > 0,
		TransferCount:    len(incoming.Transfers),
		OutgoingCount:    len(outgoing.Transfers),
		TransfersPreview: previewTransfers(incoming.Transfers),
		ERC20Balances:    previewTokens(tokens),
	}
	_, knownBuilder := knownBuilders[address]
	activity.Builder = knownBuilder ||
		(activity.IsContract && activity.OutgoingCount > 0 && balance.Cmp(oneEther) > 0)
	_, activity.WellKnown = wellKnown[address]

	sanctioned := p.sanctioned(address)
	score := scoreActivity(activity, sanctioned)
	return &providers.Finding{
		ProviderID: ProviderID,
		Kind:       providers.KindAnalytics,
		Sanctioned: sanctioned,
		RiskScore:  score,
		RiskLevel:  providers.LevelForScore(score, sanctioned),
		Details:    activity,
		Notes:      notesFor(activity, sanctioned),
		CheckedAt:  p.now().UTC(),
	}, nil
}

func (p *Provider) bestEffort(ctx context.Context, result any, method string, args ...any) {
	if err := p.client.Client().CallContext(ctx, result, method, args...); err != nil {
		p.logger.WarnContext(ctx, "alchemy call failed, continuing without it",
			"method", method,
			"error", err,
		)
	}
}

// scoreActivity grows with incoming transfers and caps at 60, so activity
// alone never reaches high risk. Builders score 5; well-known wallets at
// most 30.
func scoreActivity(a Activity, sanctioned bool) int {
	score := min(20+a.TransferCount, 60)
	switch {
	case sanctioned:
		score = 100
	case a.Builder:
		score = 5
	case a.WellKnown:
		score = min(score, 30)
	}
	return providers.ClampScore(score)
}

func notesFor(a Activity, sanctioned bool) string {
	switch {
	case sanctioned:
		return "sanctioned address, do not interact"
	case a.Builder:
		return "block builder"
	case a.WellKnown:
		return "well-known wallet"
	default:
		return "balance and recent transfers"
	}
}

func previewTransfers(in []assetTransfer) []Transfer {
	out := make([]Transfer, 0, min(len(in), previewSize))
	for _, t := range in[:min(len(in), previewSize)] {
		hash := t.Hash
		if hash == "" {
			hash = t.UniqueID
		}
		out = append(out, Transfer{
			Hash:     hash,
			Category: t.Category,
			From:     t.From,
			To:       t.To,
			Value:    t.Value,
			Asset:    t.Asset,
		})
	}
	return out
}

func previewTokens(in tokenBalancesResult) []TokenBalance {
	out := make([]TokenBalance, 0, previewSize)
	for _, t := range in.TokenBalances {
		if len(out) == previewSize {
			break
		}
		if t.TokenBalance == "" || isZeroHex(t.TokenBalance) {
			continue
		}
		out = append(out, TokenBalance{ContractAddress: t.ContractAddress, TokenBalance: t.TokenBalance})
	}
	return out
}

// isZeroHex accepts the zero-padded 32-byte form balances come back in.
func isZeroHex(s string) bool {
	n, ok := new(big.Int).SetString(strings.TrimPrefix(strings.ToLower(s), "0x"), 16)
	return ok && n.Sign() == 0
}
