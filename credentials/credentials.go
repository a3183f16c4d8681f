// Package credentials resolves per-provider ledger and API credentials.
// Records are immutable process-lifetime constants, selected by provider
// code, environment and optionally currency at request time.
package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// ErrNotConfigured means no credential record matches the provider and
// environment. This is a deploy-time bug, not a user error; the error
// normalizer maps it to its own canonical kind and it is logged loudly.
var ErrNotConfigured = errors.New("credentials not configured")

type Credentials struct {
	Provider    string
	Environment string
	Currency    string

	// Ledger side.
	LedgerURL string
	AuthToken string
	Secret    string

	// Provider API side (launch/report endpoints, not money-moving).
	APIURL string
	APIKey string

	// Multiplier converts provider amounts into ledger units, e.g. 1000
	// for providers reporting in thousandths. Defaults to 1.
	Multiplier decimal.Decimal
}

// ToLedger converts a provider-reported amount into ledger units.
func (c Credentials) ToLedger(amount decimal.Decimal) decimal.Decimal {
	if c.Multiplier.IsZero() {
		return amount
	}
	return amount.Mul(c.Multiplier)
}

// FromLedger converts a ledger balance back into the provider's units.
// Balances cross the wire in ledger units both ways; providers only ever
// see their own scale.
func (c Credentials) FromLedger(amount decimal.Decimal) decimal.Decimal {
	if c.Multiplier.IsZero() {
		return amount
	}
	return amount.Div(c.Multiplier)
}

type credentialConfig struct {
	LedgerURL  string  `mapstructure:"ledger_url"`
	AuthToken  string  `mapstructure:"auth_token"`
	Secret     string  `mapstructure:"secret"`
	APIURL     string  `mapstructure:"api_url"`
	APIKey     string  `mapstructure:"api_key"`
	Multiplier float64 `mapstructure:"multiplier"`

	Currencies map[string]credentialConfig `mapstructure:"currencies"`
}

type providerConfig struct {
	Staging    credentialConfig `mapstructure:"staging"`
	Production credentialConfig `mapstructure:"production"`
}

// Resolver holds the credential table snapshotted at construction.
// Resolution is side-effect-free and deterministic.
type Resolver struct {
	byKey map[string]Credentials
}

func NewResolver(v *viper.Viper) (*Resolver, error) {
	var providers map[string]providerConfig
	if err := v.UnmarshalKey("providers", &providers); err != nil {
		return nil, fmt.Errorf("credentials: invalid provider table: %w", err)
	}

	r := &Resolver{byKey: make(map[string]Credentials)}
	for code, pc := range providers {
		r.add(code, EnvStaging, pc.Staging)
		r.add(code, EnvProduction, pc.Production)
	}
	return r, nil
}

func (r *Resolver) add(code, env string, cc credentialConfig) {
	if cc.LedgerURL == "" {
		return
	}
	base := toCredentials(code, env, "", cc)
	r.byKey[key(code, env, "")] = base

	for cur, override := range cc.Currencies {
		merged := cc
		if override.LedgerURL != "" {
			merged.LedgerURL = override.LedgerURL
		}
		if override.AuthToken != "" {
			merged.AuthToken = override.AuthToken
		}
		if override.Secret != "" {
			merged.Secret = override.Secret
		}
		if override.APIURL != "" {
			merged.APIURL = override.APIURL
		}
		if override.APIKey != "" {
			merged.APIKey = override.APIKey
		}
		if override.Multiplier != 0 {
			merged.Multiplier = override.Multiplier
		}
		r.byKey[key(code, env, cur)] = toCredentials(code, env, cur, merged)
	}
}

func toCredentials(code, env, currency string, cc credentialConfig) Credentials {
	mult := decimal.NewFromInt(1)
	if cc.Multiplier != 0 {
		mult = decimal.NewFromFloat(cc.Multiplier)
	}
	return Credentials{
		Provider:    code,
		Environment: env,
		Currency:    strings.ToUpper(currency),
		LedgerURL:   strings.TrimRight(cc.LedgerURL, "/"),
		AuthToken:   cc.AuthToken,
		Secret:      cc.Secret,
		APIURL:      strings.TrimRight(cc.APIURL, "/"),
		APIKey:      cc.APIKey,
		Multiplier:  mult,
	}
}

// Resolve returns the credential record for a provider in the given
// environment. Providers whose backend differs by settlement currency
// carry per-currency variants; the base record is the fallback.
func (r *Resolver) Resolve(provider, environment, currency string) (Credentials, error) {
	if c, ok := r.byKey[key(provider, environment, currency)]; ok {
		return c, nil
	}
	if c, ok := r.byKey[key(provider, environment, "")]; ok {
		return c, nil
	}
	return Credentials{}, fmt.Errorf("%w: provider %q in %s", ErrNotConfigured, provider, environment)
}

func key(provider, env, currency string) string {
	return strings.ToLower(provider) + "|" + strings.ToLower(env) + "|" + strings.ToUpper(currency)
}
