package pricing

import (
	"fmt"
	"math"
)

// Lattice holds the scalars derived from a contract for a recombining
// Cox-Ross-Rubinstein tree. Up*Down is the same at every step, so a node
// depends only on the net number of up moves.
type Lattice struct {
	Steps       int
	Dt          float64
	Up          float64
	Down        float64
	Probability float64
	Discount    float64
}

func NewLattice(spec ContractSpec) (*Lattice, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return newLattice(spec), nil
}

func newLattice(spec ContractSpec) *Lattice {
	dt := spec.TimeToMaturity / float64(spec.StepCount)
	growth := math.Exp(spec.RiskFreeRate * dt)

	l := &Lattice{
		Steps:    spec.StepCount,
		Dt:       dt,
		Discount: math.Exp(-spec.RiskFreeRate * dt),
	}

	// With no volatility the up and down factors coincide and the risk neutral
	// weight is undefined; every path then follows the forward.
	if spec.Volatility == 0 {
		l.Up, l.Down, l.Probability = growth, growth, 1
		return l
	}

	l.Up = math.Exp(spec.Volatility * math.Sqrt(dt))
	l.Down = 1 / l.Up
	l.Probability = (growth - l.Down) / (l.Up - l.Down)

	// When the one step forward lies outside [Down, Up] the weight leaves
	// [0, 1] and values can go negative. Center the tree on the forward
	// instead, which keeps the weight strictly inside (0, 1).
	if l.Probability < 0 || l.Probability > 1 {
		spread := math.Exp(spec.Volatility * math.Sqrt(dt))
		l.Up = growth * spread
		l.Down = growth / spread
		l.Probability = (growth - l.Down) / (l.Up - l.Down)
	}

	return l
}

// AssetPrice is the underlying price at terminal node i, reached by i up moves
// and Steps-i down moves.
func (l *Lattice) AssetPrice(spot float64, i int) float64 {
	return spot * math.Pow(l.Up, float64(i)) * math.Pow(l.Down, float64(l.Steps-i))
}

// value runs backward induction over two alternating layer buffers. Index i+1
// of a layer is the up child of node i in the layer before it.
func (l *Lattice) value(spec ContractSpec) float64 {
	current := make([]float64, l.Steps+1)
	next := make([]float64, l.Steps+1)

	payoff := spec.Kind.payoff()
	for i := range current {
		current[i] = payoff(l.AssetPrice(spec.UnderlyingPrice, i), spec.StrikePrice)
	}

	p := l.Probability
	q := 1 - p
	for step := l.Steps - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			next[i] = (p*current[i+1] + q*current[i]) * l.Discount
		}

		current, next = next, current
	}

	return current[0]
}

// Price values a European option on a binomial lattice of spec.StepCount steps.
// It returns ErrInvalidParameter when the contract violates an invariant.
func Price(spec ContractSpec) (float64, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}

	value := newLattice(spec).value(spec)
	if !isFinite(value) {
		return 0, fmt.Errorf("Price: lattice of %d steps overflows for volatility %v and maturity %v: %w", spec.StepCount, spec.Volatility, spec.TimeToMaturity, ErrInvalidParameter)
	}

	return value, nil
}
