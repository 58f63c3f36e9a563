package eventmodels

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/lattice-pricer/src/pricing"
)

type ConvergencePointDTO struct {
	Steps          int     `json:"steps"`
	Price          float64 `json:"price"`
	Change         float64 `json:"change"`
	ReferenceError float64 `json:"reference_error"`
}

type ConvergenceReportDTO struct {
	Kind         string                `json:"kind"`
	Reference    float64               `json:"black_scholes"`
	Points       []ConvergencePointDTO `json:"points"`
	MeanChange   float64               `json:"mean_change"`
	StdDevChange float64               `json:"stddev_change"`
	ChangeRatio  float64               `json:"change_ratio"`
}

func NewConvergenceReportDTO(report *pricing.ConvergenceReport) *ConvergenceReportDTO {
	dto := &ConvergenceReportDTO{
		Kind:         string(report.Spec.Kind),
		Reference:    report.Reference,
		MeanChange:   report.MeanChange,
		StdDevChange: report.StdDevChange,
		ChangeRatio:  report.ChangeRatio,
	}

	for _, pt := range report.Points {
		dto.Points = append(dto.Points, ConvergencePointDTO(pt))
	}

	return dto
}

func (r *ConvergenceReportDTO) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Steps", "Price", "Change", "vs Black-Scholes"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, pt := range r.Points {
		table.Append([]string{
			p.Sprintf("%d", pt.Steps),
			p.Sprintf("%.6f", pt.Price),
			fmt.Sprintf("%+.6f", pt.Change),
			fmt.Sprintf("%+.6f", pt.ReferenceError),
		})
	}

	table.SetFooter([]string{"", p.Sprintf("BS %.6f", r.Reference), fmt.Sprintf("mean %.6f", r.MeanChange), fmt.Sprintf("ratio %.3f", r.ChangeRatio)})
	table.Render()

	return display.String()
}

// LatticeDTO describes the derived scalars of a lattice.
type LatticeDTO struct {
	Steps       int     `json:"steps"`
	Dt          float64 `json:"dt"`
	Up          float64 `json:"up"`
	Down        float64 `json:"down"`
	Probability float64 `json:"probability"`
	Discount    float64 `json:"discount"`
}

func (l LatticeDTO) String() string {
	display := &strings.Builder{}

	table := tablewriter.NewWriter(display)
	table.SetColumnSeparator("")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	display.WriteString("Lattice:\n")

	table.Append([]string{"steps", fmt.Sprintf("%d", l.Steps)})
	table.Append([]string{"dt", fmt.Sprintf("%.6f", l.Dt)})
	table.Append([]string{"up", fmt.Sprintf("%.6f", l.Up)})
	table.Append([]string{"down", fmt.Sprintf("%.6f", l.Down)})
	table.Append([]string{"p", fmt.Sprintf("%.6f", l.Probability)})
	table.Append([]string{"discount", fmt.Sprintf("%.6f", l.Discount)})

	table.Render()
	return display.String()
}

func NewLatticeDTO(l *pricing.Lattice) LatticeDTO {
	return LatticeDTO(*l)
}
