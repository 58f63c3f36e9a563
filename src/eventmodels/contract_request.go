package eventmodels

import (
	"fmt"

	"github.com/jiaming2012/lattice-pricer/src/pricing"
)

// ContractRequest is the wire form of a contract to be priced. The same
// struct is decoded from JSON bodies, query strings and CSV rows.
type ContractRequest struct {
	ID              string  `json:"id,omitempty" csv:"id" schema:"id"`
	Symbol          string  `json:"symbol,omitempty" csv:"symbol" schema:"symbol"`
	Model           string  `json:"model,omitempty" csv:"model" schema:"model"`
	Kind            string  `json:"kind" csv:"kind" schema:"kind"`
	UnderlyingPrice float64 `json:"underlying" csv:"underlying" schema:"underlying"`
	StrikePrice     float64 `json:"strike" csv:"strike" schema:"strike"`
	TimeToMaturity  float64 `json:"maturity" csv:"maturity" schema:"maturity"`
	Volatility      float64 `json:"volatility" csv:"volatility" schema:"volatility"`
	RiskFreeRate    float64 `json:"rate" csv:"rate" schema:"rate"`
	Steps           int     `json:"steps" csv:"steps" schema:"steps"`
}

func (r ContractRequest) ToSpec() (pricing.ContractSpec, error) {
	kind, err := pricing.ParseOptionKind(r.Kind)
	if err != nil {
		return pricing.ContractSpec{}, fmt.Errorf("ContractRequest: %w", err)
	}

	spec := pricing.ContractSpec{
		UnderlyingPrice: r.UnderlyingPrice,
		StrikePrice:     r.StrikePrice,
		TimeToMaturity:  r.TimeToMaturity,
		Volatility:      r.Volatility,
		RiskFreeRate:    r.RiskFreeRate,
		StepCount:       r.Steps,
		Kind:            kind,
	}

	return spec, nil
}

type BatchRequest struct {
	Contracts []ContractRequest `json:"contracts"`
}

type BatchResponse struct {
	RequestID string           `json:"request_id"`
	Results   []*PricingResult `json:"results"`
}
