package pricing

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	BinomialModelName     = "binomial"
	BlackScholesModelName = "black-scholes"
)

type Model interface {
	Name() string
	Price(spec ContractSpec) (float64, error)
}

type BinomialModel struct{}

func (BinomialModel) Name() string {
	return BinomialModelName
}

func (BinomialModel) Price(spec ContractSpec) (float64, error) {
	return Price(spec)
}

// BlackScholesModel is the closed-form continuous-time limit of the lattice.
// StepCount is ignored.
type BlackScholesModel struct{}

func (BlackScholesModel) Name() string {
	return BlackScholesModelName
}

func (BlackScholesModel) Price(spec ContractSpec) (float64, error) {
	if err := spec.validateMarket(); err != nil {
		return 0, err
	}

	S, K, T, r, v := spec.UnderlyingPrice, spec.StrikePrice, spec.TimeToMaturity, spec.RiskFreeRate, spec.Volatility
	discount := math.Exp(-r * T)

	if v == 0 {
		return discount * spec.Kind.payoff()(S*math.Exp(r*T), K), nil
	}

	d1 := (math.Log(S/K) + (r+0.5*v*v)*T) / (v * math.Sqrt(T))
	d2 := d1 - v*math.Sqrt(T)

	norm := distuv.UnitNormal
	if spec.Kind == Put {
		return K*discount*norm.CDF(-d2) - S*norm.CDF(-d1), nil
	}

	return S*norm.CDF(d1) - K*discount*norm.CDF(d2), nil
}

func ModelByName(name string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BinomialModelName:
		return BinomialModel{}, nil
	case BlackScholesModelName, "bs":
		return BlackScholesModel{}, nil
	default:
		return nil, fmt.Errorf("ModelByName: unknown pricing model %q: %w", name, ErrInvalidParameter)
	}
}
