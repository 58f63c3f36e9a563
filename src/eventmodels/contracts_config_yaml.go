package eventmodels

// ContractsConfigYAML is a contract file. Defaults fill any field a contract
// leaves out.
type ContractsConfigYAML struct {
	Defaults  ContractDefaultsYAML `yaml:"defaults"`
	Contracts []ContractYAML       `yaml:"contracts"`
}

type ContractDefaultsYAML struct {
	Model        string   `yaml:"model"`
	Steps        int      `yaml:"steps"`
	Volatility   *float64 `yaml:"volatility,omitempty"`
	RiskFreeRate *float64 `yaml:"rate,omitempty"`
}

type ContractYAML struct {
	ID           string   `yaml:"id,omitempty"`
	Symbol       string   `yaml:"symbol"`
	Model        string   `yaml:"model,omitempty"`
	Kind         string   `yaml:"kind"`
	Underlying   float64  `yaml:"underlying"`
	Strike       float64  `yaml:"strike"`
	Maturity     float64  `yaml:"maturity"`
	Volatility   *float64 `yaml:"volatility,omitempty"`
	RiskFreeRate *float64 `yaml:"rate,omitempty"`
	Steps        *int     `yaml:"steps,omitempty"`
}

func (c *ContractsConfigYAML) Requests() []ContractRequest {
	out := make([]ContractRequest, 0, len(c.Contracts))
	for _, contract := range c.Contracts {
		out = append(out, contract.ToRequest(c.Defaults))
	}

	return out
}

func (c ContractYAML) ToRequest(defaults ContractDefaultsYAML) ContractRequest {
	req := ContractRequest{
		ID:              c.ID,
		Symbol:          c.Symbol,
		Model:           c.Model,
		Kind:            c.Kind,
		UnderlyingPrice: c.Underlying,
		StrikePrice:     c.Strike,
		TimeToMaturity:  c.Maturity,
		Steps:           defaults.Steps,
	}

	if req.Model == "" {
		req.Model = defaults.Model
	}

	if c.Steps != nil {
		req.Steps = *c.Steps
	}

	if c.Volatility != nil {
		req.Volatility = *c.Volatility
	} else if defaults.Volatility != nil {
		req.Volatility = *defaults.Volatility
	}

	if c.RiskFreeRate != nil {
		req.RiskFreeRate = *c.RiskFreeRate
	} else if defaults.RiskFreeRate != nil {
		req.RiskFreeRate = *defaults.RiskFreeRate
	}

	return req
}
