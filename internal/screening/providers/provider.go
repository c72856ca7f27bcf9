// Package providers defines the contract every wallet screening source
// implements and the error taxonomy they report failures with.
package providers

import (
	"context"
	"fmt"
	"time"

	"walletreg/internal/registry/models"
	id "walletreg/pkg/domain"
)

// Kind identifies what a provider inspects.
type Kind string

const (
	// KindSanctions providers match addresses against sanctions lists.
	KindSanctions Kind = "sanctions"
	// KindAnalytics providers score on-chain behaviour.
	KindAnalytics Kind = "analytics"
)

// Match is one sanctions list entry an address matched.
type Match struct {
	ListName  string  `json:"list_name"`
	Entity    string  `json:"entity"`
	Score     float64 `json:"score"`
	Reference string  `json:"reference"`
	Network   string  `json:"network,omitempty"`
	Asset     string  `json:"asset,omitempty"`
}

// Finding is the normalized result of one provider screening one address.
type Finding struct {
	ProviderID string           `json:"provider"`
	Kind       Kind             `json:"kind"`
	Sanctioned bool             `json:"sanctioned"`
	RiskScore  int              `json:"risk_score"`
	RiskLevel  models.RiskLevel `json:"risk_level"`
	Categories []string         `json:"categories,omitempty"`
	Matches    []Match          `json:"matches,omitempty"`
	// Details carries provider specific data such as balances or exposure.
	Details   any       `json:"details,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Provider is implemented by every screening source.
type Provider interface {
	// ID is unique across the registered providers.
	ID() string
	Kind() Kind
	// Screen returns a *ProviderError on failure.
	Screen(ctx context.Context, address id.WalletAddress) (*Finding, error)
}

// Registry holds providers in registration order.
type Registry struct {
	providers []Provider
	byID      map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Provider)}
}

// Register adds p. IDs must be unique.
func (r *Registry) Register(p Provider) error {
	if _, exists := r.byID[p.ID()]; exists {
		return fmt.Errorf("provider %s already registered", p.ID())
	}
	r.byID[p.ID()] = p
	r.providers = append(r.providers, p)
	return nil
}

func (r *Registry) Get(providerID string) (Provider, bool) {
	p, ok := r.byID[providerID]
	return p, ok
}

// All returns the providers in registration order.
func (r *Registry) All() []Provider {
	return append([]Provider(nil), r.providers...)
}

// LevelForScore maps a 0-100 score to a level: 70 and above is high, 40 and
// above is medium. A sanctions hit is always high.
func LevelForScore(score int, sanctioned bool) models.RiskLevel {
	switch {
	case sanctioned || score >= 70:
		return models.RiskLevelHigh
	case score >= 40:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// ClampScore bounds score to [0, models.MaxRiskScore].
func ClampScore(score int) int {
	return min(max(score, 0), models.MaxRiskScore)
}
