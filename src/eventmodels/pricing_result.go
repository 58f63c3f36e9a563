package eventmodels

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type PricingResult struct {
	ID              string  `json:"id" csv:"id"`
	Symbol          string  `json:"symbol,omitempty" csv:"symbol"`
	Model           string  `json:"model" csv:"model"`
	Kind            string  `json:"kind" csv:"kind"`
	UnderlyingPrice float64 `json:"underlying" csv:"underlying"`
	StrikePrice     float64 `json:"strike" csv:"strike"`
	TimeToMaturity  float64 `json:"maturity" csv:"maturity"`
	Volatility      float64 `json:"volatility" csv:"volatility"`
	RiskFreeRate    float64 `json:"rate" csv:"rate"`
	Steps           int     `json:"steps" csv:"steps"`
	Price           float64 `json:"price" csv:"price"`
	Error           string  `json:"error,omitempty" csv:"error"`
	ElapsedMicros   int64   `json:"elapsed_us" csv:"elapsed_us"`
}

func NewPricingResult(req ContractRequest, model string) *PricingResult {
	return &PricingResult{
		ID:              req.ID,
		Symbol:          req.Symbol,
		Model:           model,
		Kind:            strings.ToLower(strings.TrimSpace(req.Kind)),
		UnderlyingPrice: req.UnderlyingPrice,
		StrikePrice:     req.StrikePrice,
		TimeToMaturity:  req.TimeToMaturity,
		Volatility:      req.Volatility,
		RiskFreeRate:    req.RiskFreeRate,
		Steps:           req.Steps,
	}
}

func (r *PricingResult) SetElapsed(d time.Duration) {
	r.ElapsedMicros = d.Microseconds()
}

func (r *PricingResult) Failed() bool {
	return r.Error != ""
}

type PricingResults []*PricingResult

func (results PricingResults) Failures() int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}

	return n
}

func (results PricingResults) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Symbol", "Model", "Kind", "Spot", "Strike", "T", "Vol", "Rate", "Steps", "Price"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, r := range results {
		price := p.Sprintf("%.4f", r.Price)
		if r.Failed() {
			price = fmt.Sprintf("error: %s", r.Error)
		}

		table.Append([]string{
			r.Symbol,
			r.Model,
			r.Kind,
			p.Sprintf("%.2f", r.UnderlyingPrice),
			p.Sprintf("%.2f", r.StrikePrice),
			p.Sprintf("%.4f", r.TimeToMaturity),
			p.Sprintf("%.4f", r.Volatility),
			p.Sprintf("%.4f", r.RiskFreeRate),
			fmt.Sprintf("%d", r.Steps),
			price,
		})
	}

	table.Render()
	return display.String()
}
