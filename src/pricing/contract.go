package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidParameter = errors.New("invalid parameter")

type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

func ParseOptionKind(s string) (OptionKind, error) {
	kind := OptionKind(strings.ToLower(strings.TrimSpace(s)))
	if err := kind.Validate(); err != nil {
		return "", err
	}

	return kind, nil
}

func (k OptionKind) Validate() error {
	if k != Call && k != Put {
		return fmt.Errorf("OptionKind: Validate: unknown option kind %q: %w", string(k), ErrInvalidParameter)
	}

	return nil
}

// payoff returns the terminal payoff function for the option kind. The
// kind must already be validated.
func (k OptionKind) payoff() func(assetPrice, strike float64) float64 {
	if k == Put {
		return func(assetPrice, strike float64) float64 {
			return math.Max(0, strike-assetPrice)
		}
	}

	return func(assetPrice, strike float64) float64 {
		return math.Max(0, assetPrice-strike)
	}
}

// ContractSpec fully describes a European vanilla option to be priced.
// Rates and volatility are annualized; RiskFreeRate is continuously compounded.
type ContractSpec struct {
	UnderlyingPrice float64
	StrikePrice     float64
	TimeToMaturity  float64
	Volatility      float64
	RiskFreeRate    float64
	StepCount       int
	Kind            OptionKind
}

// Validate checks every invariant of the contract, including the lattice step count.
func (s ContractSpec) Validate() error {
	if err := s.validateMarket(); err != nil {
		return err
	}

	if s.StepCount < 1 {
		return fmt.Errorf("ContractSpec: step count must be at least 1, got %d: %w", s.StepCount, ErrInvalidParameter)
	}

	return nil
}

// validateMarket checks the invariants shared by every model. Closed-form
// models ignore StepCount.
func (s ContractSpec) validateMarket() error {
	if !isFinite(s.UnderlyingPrice) || s.UnderlyingPrice <= 0 {
		return fmt.Errorf("ContractSpec: underlying price must be positive, got %v: %w", s.UnderlyingPrice, ErrInvalidParameter)
	}

	if !isFinite(s.StrikePrice) || s.StrikePrice <= 0 {
		return fmt.Errorf("ContractSpec: strike price must be positive, got %v: %w", s.StrikePrice, ErrInvalidParameter)
	}

	if !isFinite(s.TimeToMaturity) || s.TimeToMaturity <= 0 {
		return fmt.Errorf("ContractSpec: time to maturity must be positive, got %v: %w", s.TimeToMaturity, ErrInvalidParameter)
	}

	if !isFinite(s.Volatility) || s.Volatility < 0 {
		return fmt.Errorf("ContractSpec: volatility must be non-negative, got %v: %w", s.Volatility, ErrInvalidParameter)
	}

	if !isFinite(s.RiskFreeRate) {
		return fmt.Errorf("ContractSpec: risk free rate must be finite, got %v: %w", s.RiskFreeRate, ErrInvalidParameter)
	}

	return s.Kind.Validate()
}

// WithSteps returns a copy of the contract priced on a lattice of n steps.
func (s ContractSpec) WithSteps(n int) ContractSpec {
	s.StepCount = n
	return s
}

// WithKind returns a copy of the contract for the given option kind.
func (s ContractSpec) WithKind(kind OptionKind) ContractSpec {
	s.Kind = kind
	return s
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
