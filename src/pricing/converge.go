package pricing

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// MaxConvergenceSteps bounds the largest lattice a convergence study may build.
const MaxConvergenceSteps = 1 << 14

type ConvergencePoint struct {
	Steps          int
	Price          float64
	Change         float64
	ReferenceError float64
}

type ConvergenceReport struct {
	Spec         ContractSpec
	Reference    float64
	Points       []ConvergencePoint
	MeanChange   float64
	StdDevChange float64
	ChangeRatio  float64
}

func (r *ConvergenceReport) Last() ConvergencePoint {
	return r.Points[len(r.Points)-1]
}

// Converge prices spec on lattices of StepCount, 2*StepCount, ... steps and
// compares each price with the previous one and with Black-Scholes.
func Converge(spec ContractSpec, doublings int) (*ConvergenceReport, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if doublings < 1 {
		return nil, fmt.Errorf("Converge: doublings must be at least 1, got %d: %w", doublings, ErrInvalidParameter)
	}

	if doublings > 30 || spec.StepCount > MaxConvergenceSteps>>doublings {
		return nil, fmt.Errorf("Converge: %d doublings of %d steps exceeds %d steps: %w", doublings, spec.StepCount, MaxConvergenceSteps, ErrInvalidParameter)
	}

	reference, err := BlackScholesModel{}.Price(spec)
	if err != nil {
		return nil, fmt.Errorf("Converge: reference price: %w", err)
	}

	report := &ConvergenceReport{
		Spec:      spec,
		Reference: reference,
	}

	var changes []float64
	steps := spec.StepCount
	for n := 0; n <= doublings; n++ {
		price, err := Price(spec.WithSteps(steps))
		if err != nil {
			return nil, fmt.Errorf("Converge: %d steps: %w", steps, err)
		}

		point := ConvergencePoint{
			Steps:          steps,
			Price:          price,
			ReferenceError: price - reference,
		}

		if n > 0 {
			point.Change = price - report.Points[n-1].Price
			changes = append(changes, math.Abs(point.Change))
		}

		report.Points = append(report.Points, point)
		steps *= 2
	}

	if report.MeanChange, err = stats.Mean(changes); err != nil {
		return nil, fmt.Errorf("Converge: failed to calculate mean change: %w", err)
	}

	if report.StdDevChange, err = stats.StandardDeviation(changes); err != nil {
		return nil, fmt.Errorf("Converge: failed to calculate the standard deviation: %w", err)
	}

	if n := len(changes); n >= 2 && changes[n-2] != 0 {
		report.ChangeRatio = changes[n-1] / changes[n-2]
	}

	return report, nil
}
