package eventmodels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/lattice-pricer/src/pricing"
)

const contractsYAML = `
defaults:
  model: binomial
  steps: 100
  volatility: 0.2
  rate: 0.05
contracts:
  - symbol: SPX-C-100
    kind: call
    underlying: 100
    strike: 100
    maturity: 1
    steps: 3
  - symbol: SPX-P-95
    kind: put
    underlying: 100
    strike: 95
    maturity: 0.5
    volatility: 0
    rate: -0.01
    model: black-scholes
`

func TestContractsConfigYAML(t *testing.T) {
	var config ContractsConfigYAML
	require.NoError(t, yaml.Unmarshal([]byte(contractsYAML), &config))
	require.Len(t, config.Contracts, 2)

	t.Run("contract fields override defaults", func(t *testing.T) {
		requests := config.Requests()
		require.Len(t, requests, 2)

		call := requests[0]
		assert.Equal(t, "binomial", call.Model)
		assert.Equal(t, 3, call.Steps)
		assert.Equal(t, 0.2, call.Volatility)
		assert.Equal(t, 0.05, call.RiskFreeRate)

		put := requests[1]
		assert.Equal(t, "black-scholes", put.Model)
		assert.Equal(t, 100, put.Steps)
		assert.Equal(t, 0.0, put.Volatility)
		assert.Equal(t, -0.01, put.RiskFreeRate)
	})

	t.Run("requests convert to contract specs", func(t *testing.T) {
		spec, err := config.Requests()[0].ToSpec()
		require.NoError(t, err)
		assert.Equal(t, pricing.Call, spec.Kind)

		price, err := pricing.Price(spec)
		require.NoError(t, err)
		assert.InDelta(t, 11.043871091951113, price, 1e-9)
	})
}

func TestContractRequestToSpec(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		_, err := ContractRequest{Kind: "butterfly", UnderlyingPrice: 1, StrikePrice: 1, TimeToMaturity: 1, Steps: 1}.ToSpec()
		assert.ErrorIs(t, err, pricing.ErrInvalidParameter)
	})

	t.Run("conversion does not validate the contract", func(t *testing.T) {
		spec, err := ContractRequest{Kind: "Put"}.ToSpec()
		require.NoError(t, err)
		assert.Equal(t, pricing.Put, spec.Kind)
		assert.ErrorIs(t, spec.Validate(), pricing.ErrInvalidParameter)
	})
}
