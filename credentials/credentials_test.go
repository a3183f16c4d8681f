package credentials

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	v := viper.New()
	v.Set("providers", map[string]any{
		"sbo": map[string]any{
			"staging": map[string]any{
				"ledger_url": "http://ledger.staging.local/",
				"auth_token": "tok-staging",
				"secret":     "sec-staging",
				"api_url":    "http://sbo.staging.local",
				"api_key":    "companykey",
			},
			"production": map[string]any{
				"ledger_url": "http://ledger.local",
				"auth_token": "tok-prod",
				"secret":     "sec-prod",
				"currencies": map[string]any{
					"idr": map[string]any{
						"ledger_url": "http://ledger-idr.local",
						"multiplier": 1000,
					},
				},
			},
		},
	})

	r, err := NewResolver(v)
	require.NoError(t, err)
	return r
}

func TestResolveByEnvironment(t *testing.T) {
	r := testResolver(t)

	staging, err := r.Resolve("sbo", EnvStaging, "")
	require.NoError(t, err)
	assert.Equal(t, "http://ledger.staging.local", staging.LedgerURL)
	assert.Equal(t, "tok-staging", staging.AuthToken)
	assert.True(t, staging.Multiplier.IsPositive())

	prod, err := r.Resolve("sbo", EnvProduction, "")
	require.NoError(t, err)
	assert.Equal(t, "tok-prod", prod.AuthToken)
}

func TestResolveCurrencyVariantOverridesBase(t *testing.T) {
	r := testResolver(t)

	idr, err := r.Resolve("sbo", EnvProduction, "IDR")
	require.NoError(t, err)
	assert.Equal(t, "http://ledger-idr.local", idr.LedgerURL)
	// Fields without an override fall back to the base record.
	assert.Equal(t, "tok-prod", idr.AuthToken)
	assert.Equal(t, "1000", idr.Multiplier.String())
}

func TestResolveUnknownCurrencyFallsBack(t *testing.T) {
	r := testResolver(t)

	usd, err := r.Resolve("sbo", EnvProduction, "USD")
	require.NoError(t, err)
	assert.Equal(t, "http://ledger.local", usd.LedgerURL)
	assert.Equal(t, "1", usd.Multiplier.String())
}

func TestResolveNotConfigured(t *testing.T) {
	r := testResolver(t)

	_, err := r.Resolve("nosuch", EnvStaging, "")
	assert.True(t, errors.Is(err, ErrNotConfigured))

	// Configured provider, missing environment variant.
	v := viper.New()
	v.Set("providers", map[string]any{
		"gslot": map[string]any{
			"staging": map[string]any{"ledger_url": "http://ledger.staging.local"},
		},
	})
	r2, err := NewResolver(v)
	require.NoError(t, err)
	_, err = r2.Resolve("gslot", EnvProduction, "")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestResolverIsDeterministic(t *testing.T) {
	r := testResolver(t)
	a, err := r.Resolve("sbo", EnvStaging, "")
	require.NoError(t, err)
	b, err := r.Resolve("sbo", EnvStaging, "")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
