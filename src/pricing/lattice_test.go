package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atTheMoney(kind OptionKind, steps int) ContractSpec {
	return ContractSpec{
		UnderlyingPrice: 100,
		StrikePrice:     100,
		TimeToMaturity:  1,
		Volatility:      0.2,
		RiskFreeRate:    0.05,
		StepCount:       steps,
		Kind:            kind,
	}
}

func TestPrice(t *testing.T) {
	t.Run("three step reference tree", func(t *testing.T) {
		call, err := Price(atTheMoney(Call, 3))
		require.NoError(t, err)
		assert.InDelta(t, 11.043871091951113, call, 1e-9)

		put, err := Price(atTheMoney(Put, 3))
		require.NoError(t, err)
		assert.InDelta(t, 6.166813542022532, put, 1e-9)
	})

	t.Run("single step", func(t *testing.T) {
		price, err := Price(atTheMoney(Call, 1))
		require.NoError(t, err)
		assert.InDelta(t, 12.162284964623943, price, 1e-9)
	})

	t.Run("out of the money two step", func(t *testing.T) {
		spec := ContractSpec{
			UnderlyingPrice: 100,
			StrikePrice:     120,
			TimeToMaturity:  0.5,
			Volatility:      0.3,
			RiskFreeRate:    0.05,
			StepCount:       2,
			Kind:            Call,
		}

		call, err := Price(spec)
		require.NoError(t, err)
		assert.InDelta(t, 3.717699946097689, call, 1e-9)

		spec.Kind = Put
		put, err := Price(spec)
		require.NoError(t, err)
		assert.InDelta(t, 20.754889389497595, put, 1e-9)
	})

	t.Run("two hundred steps approach black scholes", func(t *testing.T) {
		price, err := Price(atTheMoney(Call, 200))
		require.NoError(t, err)
		assert.InDelta(t, 10.44059125985994, price, 1e-8)
		assert.InDelta(t, 10.450583572185565, price, 0.02)
	})
}

func TestPriceProperties(t *testing.T) {
	specs := []ContractSpec{
		atTheMoney(Call, 3),
		atTheMoney(Call, 50),
		{UnderlyingPrice: 42, StrikePrice: 40, TimeToMaturity: 0.5, Volatility: 0.2, RiskFreeRate: 0.1, StepCount: 25, Kind: Call},
		{UnderlyingPrice: 50, StrikePrice: 60, TimeToMaturity: 2, Volatility: 0.45, RiskFreeRate: 0.01, StepCount: 40, Kind: Call},
		{UnderlyingPrice: 1500, StrikePrice: 1450, TimeToMaturity: 0.1, Volatility: 0.6, RiskFreeRate: -0.005, StepCount: 17, Kind: Call},
		{UnderlyingPrice: 10, StrikePrice: 25, TimeToMaturity: 3, Volatility: 0.8, RiskFreeRate: 0.03, StepCount: 100, Kind: Call},
	}

	t.Run("prices are non-negative", func(t *testing.T) {
		for _, spec := range specs {
			for _, kind := range []OptionKind{Call, Put} {
				spec.Kind = kind
				price, err := Price(spec)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, price, 0.0, "spec %+v", spec)
			}
		}
	})

	t.Run("put call parity", func(t *testing.T) {
		for _, spec := range specs {
			spec.Kind = Call
			call, err := Price(spec)
			require.NoError(t, err)

			spec.Kind = Put
			put, err := Price(spec)
			require.NoError(t, err)

			forward := spec.UnderlyingPrice - spec.StrikePrice*math.Exp(-spec.RiskFreeRate*spec.TimeToMaturity)
			assert.InEpsilon(t, forward, call-put, 1e-6, "spec %+v", spec)
		}
	})

	t.Run("monotone in underlying price", func(t *testing.T) {
		prevCall, prevPut := -1.0, math.Inf(1)
		for spot := 60.0; spot <= 140; spot += 5 {
			spec := atTheMoney(Call, 30)
			spec.UnderlyingPrice = spot

			call, err := Price(spec)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, call, prevCall)

			spec.Kind = Put
			put, err := Price(spec)
			require.NoError(t, err)
			assert.LessOrEqual(t, put, prevPut)

			prevCall, prevPut = call, put
		}
	})

	t.Run("successive doublings converge", func(t *testing.T) {
		prevPrice, err := Price(atTheMoney(Call, 50))
		require.NoError(t, err)

		prevChange := math.Inf(1)
		for steps := 100; steps <= 800; steps *= 2 {
			price, err := Price(atTheMoney(Call, steps))
			require.NoError(t, err)

			change := math.Abs(price - prevPrice)
			assert.Less(t, change, prevChange, "%d steps", steps)

			prevPrice, prevChange = price, change
		}
	})
}

func TestPriceZeroVolatility(t *testing.T) {
	t.Run("call is the discounted forward payoff", func(t *testing.T) {
		spec := ContractSpec{UnderlyingPrice: 100, StrikePrice: 90, TimeToMaturity: 1, RiskFreeRate: 0.05, StepCount: 10, Kind: Call}

		price, err := Price(spec)
		require.NoError(t, err)

		expected := math.Exp(-0.05) * math.Max(0, 100*math.Exp(0.05)-90)
		assert.InDelta(t, expected, price, 1e-9)
		assert.InDelta(t, 14.389351794935644, price, 1e-9)
	})

	t.Run("put is the discounted forward payoff", func(t *testing.T) {
		spec := ContractSpec{UnderlyingPrice: 100, StrikePrice: 110, TimeToMaturity: 2, RiskFreeRate: 0.02, StepCount: 7, Kind: Put}

		price, err := Price(spec)
		require.NoError(t, err)

		expected := math.Exp(-0.04) * math.Max(0, 110-100*math.Exp(0.04))
		assert.InDelta(t, expected, price, 1e-9)
	})

	t.Run("out of the money forward is worthless", func(t *testing.T) {
		spec := ContractSpec{UnderlyingPrice: 100, StrikePrice: 120, TimeToMaturity: 1, RiskFreeRate: 0.05, StepCount: 5, Kind: Call}

		price, err := Price(spec)
		require.NoError(t, err)
		assert.Equal(t, 0.0, price)
	})
}

func TestPriceLowVolatilityDrift(t *testing.T) {
	// r*dt exceeds sigma*sqrt(dt), so exp(-sigma*sqrt(dt)) < exp(sigma*sqrt(dt)) < exp(r*dt).
	spec := ContractSpec{UnderlyingPrice: 100, StrikePrice: 100, TimeToMaturity: 1, Volatility: 0.01, RiskFreeRate: 0.1, StepCount: 1, Kind: Put}

	t.Run("weight stays a probability", func(t *testing.T) {
		l, err := NewLattice(spec)
		require.NoError(t, err)

		assert.Greater(t, l.Probability, 0.0)
		assert.Less(t, l.Probability, 1.0)
		assert.InDelta(t, math.Exp(0.11), l.Up, 1e-12)
		assert.InDelta(t, math.Exp(0.09), l.Down, 1e-12)
	})

	t.Run("put is worthless not negative", func(t *testing.T) {
		put, err := Price(spec)
		require.NoError(t, err)
		assert.Equal(t, 0.0, put)
	})

	t.Run("call is the discounted forward payoff", func(t *testing.T) {
		call, err := Price(spec.WithKind(Call))
		require.NoError(t, err)
		assert.InDelta(t, 100-100*math.Exp(-0.1), call, 1e-9)
	})

	t.Run("negative rate mirrors the put", func(t *testing.T) {
		mirrored := spec
		mirrored.RiskFreeRate = -0.1

		call, err := Price(mirrored.WithKind(Call))
		require.NoError(t, err)
		assert.Equal(t, 0.0, call)

		put, err := Price(mirrored)
		require.NoError(t, err)
		assert.InDelta(t, 100*math.Exp(0.1)-100, put, 1e-9)
	})

	t.Run("non-negative for many steps", func(t *testing.T) {
		for _, steps := range []int{2, 10, 50, 99} {
			for _, kind := range []OptionKind{Call, Put} {
				price, err := Price(spec.WithSteps(steps).WithKind(kind))
				require.NoError(t, err)
				assert.GreaterOrEqual(t, price, 0.0, "%d steps %s", steps, kind)
			}
		}
	})
}

func TestPriceOverflow(t *testing.T) {
	spec := ContractSpec{UnderlyingPrice: 100, StrikePrice: 100, TimeToMaturity: 30, Volatility: 2, RiskFreeRate: 0.05, StepCount: 4300, Kind: Call}

	_, err := Price(spec)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Price(spec.WithSteps(400))
	assert.NoError(t, err)
}

func TestPriceInvalidParameter(t *testing.T) {
	valid := atTheMoney(Call, 3)

	cases := map[string]func(s *ContractSpec){
		"zero steps":          func(s *ContractSpec) { s.StepCount = 0 },
		"negative steps":      func(s *ContractSpec) { s.StepCount = -4 },
		"zero maturity":       func(s *ContractSpec) { s.TimeToMaturity = 0 },
		"negative maturity":   func(s *ContractSpec) { s.TimeToMaturity = -1 },
		"zero underlying":     func(s *ContractSpec) { s.UnderlyingPrice = 0 },
		"negative underlying": func(s *ContractSpec) { s.UnderlyingPrice = -100 },
		"zero strike":         func(s *ContractSpec) { s.StrikePrice = 0 },
		"negative volatility": func(s *ContractSpec) { s.Volatility = -0.01 },
		"nan volatility":      func(s *ContractSpec) { s.Volatility = math.NaN() },
		"infinite rate":       func(s *ContractSpec) { s.RiskFreeRate = math.Inf(1) },
		"unknown kind":        func(s *ContractSpec) { s.Kind = "straddle" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			spec := valid
			mutate(&spec)

			price, err := Price(spec)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			assert.Equal(t, 0.0, price)
		})
	}

	t.Run("negative rate is valid", func(t *testing.T) {
		spec := valid
		spec.RiskFreeRate = -0.01

		_, err := Price(spec)
		assert.NoError(t, err)
	})
}

func TestNewLattice(t *testing.T) {
	t.Run("derived scalars", func(t *testing.T) {
		l, err := NewLattice(atTheMoney(Call, 4))
		require.NoError(t, err)

		assert.Equal(t, 0.25, l.Dt)
		assert.InDelta(t, math.Exp(0.1), l.Up, 1e-12)
		assert.InDelta(t, 1/l.Up, l.Down, 1e-12)
		assert.InDelta(t, (math.Exp(0.0125)-l.Down)/(l.Up-l.Down), l.Probability, 1e-12)
		assert.InDelta(t, math.Exp(-0.0125), l.Discount, 1e-12)
	})

	t.Run("tree recombines", func(t *testing.T) {
		l, err := NewLattice(atTheMoney(Call, 6))
		require.NoError(t, err)

		assert.InDelta(t, 100.0, l.AssetPrice(100, 3), 1e-9)
		assert.InDelta(t, 100*math.Pow(l.Up, 6), l.AssetPrice(100, 6), 1e-9)
		assert.InDelta(t, 100*math.Pow(l.Down, 6), l.AssetPrice(100, 0), 1e-9)
	})

	t.Run("zero volatility follows the forward", func(t *testing.T) {
		spec := atTheMoney(Call, 4)
		spec.Volatility = 0

		l, err := NewLattice(spec)
		require.NoError(t, err)
		assert.Equal(t, 1.0, l.Probability)
		assert.Equal(t, l.Up, l.Down)
		assert.InDelta(t, 100*math.Exp(0.05), l.AssetPrice(100, 2), 1e-9)
	})

	t.Run("rejects invalid contract", func(t *testing.T) {
		_, err := NewLattice(atTheMoney(Call, 0))
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
}

func TestParseOptionKind(t *testing.T) {
	kind, err := ParseOptionKind(" PUT ")
	require.NoError(t, err)
	assert.Equal(t, Put, kind)

	kind, err = ParseOptionKind("call")
	require.NoError(t, err)
	assert.Equal(t, Call, kind)

	_, err = ParseOptionKind("")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
