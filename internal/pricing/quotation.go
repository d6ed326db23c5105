package pricing

import (
	"fmt"
	"math"
)

const (
	WattsPerKW             = 1000.0
	KWPerInverter          = 5.0
	InstallationCostPerKW  = 8000.0
	MiscellaneousCostPerKW = 5000.0
)

// QuoteInput selects a capacity and one brand per component.
type QuoteInput struct {
	SystemSize    int    `json:"system_size"`
	PanelBrand    string `json:"panel_brand"`
	InverterBrand string `json:"inverter_brand"`
	WiringBrand   string `json:"wiring_brand"`
}

func DefaultQuoteInput() QuoteInput {
	return QuoteInput{SystemSize: 5, PanelBrand: "tata", InverterBrand: "luminous", WiringBrand: "polycab"}
}

// Breakdown itemises a quotation total.
type Breakdown struct {
	SystemSize       int     `json:"system_size"`
	Inverters        int     `json:"inverters"`
	PanelCost        float64 `json:"panel_cost"`
	InverterCost     float64 `json:"inverter_cost"`
	WiringCost       float64 `json:"wiring_cost"`
	InstallationCost float64 `json:"installation_cost"`
	OtherCost        float64 `json:"other_cost"`
	TotalCost        float64 `json:"total_cost"`
}

// InverterCount is one inverter per started block of five kW.
func InverterCount(systemSize int) int {
	return int(math.Ceil(float64(systemSize) / KWPerInverter))
}

// QuoteCost prices a partner quotation.
func QuoteCost(in QuoteInput) (Breakdown, error) {
	if !CapacityRange.Contains(float64(in.SystemSize)) {
		return Breakdown{}, fmt.Errorf("%w: system size %d outside %.0f-%.0f", ErrInvalidParams, in.SystemSize, CapacityRange.Min, CapacityRange.Max)
	}
	panel, ok := findBrand(PanelBrands, in.PanelBrand)
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: unknown panel brand %q", ErrInvalidParams, in.PanelBrand)
	}
	inverter, ok := findBrand(InverterBrands, in.InverterBrand)
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: unknown inverter brand %q", ErrInvalidParams, in.InverterBrand)
	}
	wiring, ok := findBrand(WiringBrands, in.WiringBrand)
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: unknown wiring brand %q", ErrInvalidParams, in.WiringBrand)
	}

	kw := float64(in.SystemSize)
	b := Breakdown{
		SystemSize:       in.SystemSize,
		Inverters:        InverterCount(in.SystemSize),
		PanelCost:        kw * WattsPerKW * panel.Price,
		WiringCost:       kw * wiring.Price,
		InstallationCost: kw * InstallationCostPerKW,
		OtherCost:        kw * MiscellaneousCostPerKW,
	}
	b.InverterCost = float64(b.Inverters) * inverter.Price
	b.TotalCost = b.PanelCost + b.InverterCost + b.WiringCost + b.InstallationCost + b.OtherCost
	return b, nil
}
