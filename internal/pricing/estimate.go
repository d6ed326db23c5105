// Package pricing sizes rooftop solar systems and prices partner quotations.
// Everything here is a pure function of its inputs.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

const (
	TariffPerUnit      = 6.0  // currency per kWh
	DaysPerMonth       = 30.0
	OversizeBuffer     = 1.2
	SqFtPerKW          = 100.0
	MaxSavingsFraction = 0.95
	CarbonTonsPerKW    = 1.5 // tons CO2 offset per kW per year
)

var ErrInvalidParams = errors.New("invalid calculator parameters")

// Params are the calculator inputs.
type Params struct {
	MonthlyBill float64 `json:"monthly_bill"`
	RoofArea    float64 `json:"roof_area"`
	Location    string  `json:"location"`
	SystemType  string  `json:"system_type"`
}

// DefaultParams mirrors the calculator's initial slider positions.
func DefaultParams() Params {
	return Params{MonthlyBill: 3000, RoofArea: 500, Location: "bangalore", SystemType: "grid-tie"}
}

// Validate checks enumerations and slider bounds.
func (p Params) Validate() error {
	if _, ok := FindLocation(p.Location); !ok {
		return fmt.Errorf("%w: unknown location %q", ErrInvalidParams, p.Location)
	}
	if _, ok := FindSystemType(p.SystemType); !ok {
		return fmt.Errorf("%w: unknown system type %q", ErrInvalidParams, p.SystemType)
	}
	if !BillRange.Contains(p.MonthlyBill) {
		return fmt.Errorf("%w: monthly bill %.0f outside %.0f-%.0f", ErrInvalidParams, p.MonthlyBill, BillRange.Min, BillRange.Max)
	}
	if !RoofAreaRange.Contains(p.RoofArea) {
		return fmt.Errorf("%w: roof area %.0f outside %.0f-%.0f", ErrInvalidParams, p.RoofArea, RoofAreaRange.Min, RoofAreaRange.Max)
	}
	return nil
}

// Result is the cost and savings breakdown for a Params value.
type Result struct {
	SystemSizeKW      float64 `json:"system_size_kw"`
	TotalCost         float64 `json:"total_cost"`
	MonthlyBill       float64 `json:"monthly_bill"`
	MonthlySavings    float64 `json:"monthly_savings"`
	YearlySavings     float64 `json:"yearly_savings"`
	PaybackYears      float64 `json:"payback_years"`
	PaybackComputable bool    `json:"payback_computable"`
	CarbonOffsetTons  float64 `json:"carbon_offset_tons"`
}

// Payback renders the payback period for display.
func (r Result) Payback() string {
	if !r.PaybackComputable {
		return "not computable"
	}
	return fmt.Sprintf("%.1f years", r.PaybackYears)
}

// MaxSystemSize is the largest whole-kW system the roof can hold.
func MaxSystemSize(roofArea float64) float64 {
	if roofArea <= 0 {
		return 0
	}
	return math.Floor(roofArea / SqFtPerKW)
}

// Estimate sizes a system for p. Only enumerations and sign are checked here;
// slider bounds belong to Validate.
func Estimate(p Params) (Result, error) {
	loc, ok := FindLocation(p.Location)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown location %q", ErrInvalidParams, p.Location)
	}
	sys, ok := FindSystemType(p.SystemType)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown system type %q", ErrInvalidParams, p.SystemType)
	}
	if math.IsNaN(p.MonthlyBill) || math.IsNaN(p.RoofArea) || p.MonthlyBill < 0 || p.RoofArea < 0 {
		return Result{}, fmt.Errorf("%w: bill and roof area must be non-negative", ErrInvalidParams)
	}

	dailyUnits := p.MonthlyBill / TariffPerUnit / DaysPerMonth
	size := math.Ceil(dailyUnits / loc.SunHours * OversizeBuffer)
	size = math.Max(0, math.Min(size, MaxSystemSize(p.RoofArea)))

	totalCost := size * sys.CostPerKW
	generated := size * loc.SunHours * DaysPerMonth
	monthly := math.Min(generated*TariffPerUnit, p.MonthlyBill*MaxSavingsFraction)
	yearly := monthly * 12

	res := Result{
		SystemSizeKW:     size,
		TotalCost:        totalCost,
		MonthlyBill:      p.MonthlyBill,
		MonthlySavings:   monthly,
		YearlySavings:    yearly,
		CarbonOffsetTons: size * CarbonTonsPerKW,
	}
	if yearly > 0 {
		res.PaybackYears = totalCost / yearly
		res.PaybackComputable = true
	}
	return res, nil
}
