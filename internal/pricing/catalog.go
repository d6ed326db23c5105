package pricing

// Location is a city the calculator knows average daily sun-hours for.
type Location struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	SunHours float64 `json:"sun_hours"`
}

// SystemType is an installation topology with its cost per kW.
type SystemType struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
	CostPerKW  float64 `json:"cost_per_kw"`
}

// Brand is a component vendor with a fixed unit price. For panels the price
// is per watt, for inverters per unit and for wiring per kW.
type Brand struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// Range describes a slider: inclusive bounds and step.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

var (
	BillRange     = Range{Min: 1000, Max: 50000, Step: 500}
	RoofAreaRange = Range{Min: 200, Max: 5000, Step: 100}
	CapacityRange = Range{Min: 1, Max: 50, Step: 1}
)

var Locations = []Location{
	{Key: "bangalore", Label: "Bangalore", SunHours: 5.2},
	{Key: "mumbai", Label: "Mumbai", SunHours: 5.5},
	{Key: "delhi", Label: "Delhi", SunHours: 5.1},
	{Key: "chennai", Label: "Chennai", SunHours: 5.8},
	{Key: "hyderabad", Label: "Hyderabad", SunHours: 5.3},
	{Key: "pune", Label: "Pune", SunHours: 5.4},
}

var SystemTypes = []SystemType{
	{Key: "grid-tie", Label: "Grid-Tie System", Multiplier: 1, CostPerKW: 65000},
	{Key: "hybrid", Label: "Hybrid System", Multiplier: 1.3, CostPerKW: 85000},
	{Key: "off-grid", Label: "Off-Grid System", Multiplier: 1.6, CostPerKW: 105000},
}

var PanelBrands = []Brand{
	{Key: "tata", Label: "Tata Solar", Price: 25},
	{Key: "adani", Label: "Adani Solar", Price: 28},
	{Key: "vikram", Label: "Vikram Solar", Price: 24},
	{Key: "waaree", Label: "Waaree Solar", Price: 26},
	{Key: "luminous", Label: "Luminous Solar", Price: 27},
}

var InverterBrands = []Brand{
	{Key: "luminous", Label: "Luminous", Price: 15000},
	{Key: "microtek", Label: "Microtek", Price: 14000},
	{Key: "sukam", Label: "Sukam", Price: 16000},
	{Key: "exide", Label: "Exide", Price: 15500},
	{Key: "delta", Label: "Delta", Price: 18000},
}

var WiringBrands = []Brand{
	{Key: "polycab", Label: "Polycab", Price: 2000},
	{Key: "havells", Label: "Havells", Price: 2200},
	{Key: "finolex", Label: "Finolex", Price: 1800},
	{Key: "kei", Label: "KEI", Price: 2100},
}

func FindLocation(key string) (Location, bool) {
	for _, l := range Locations {
		if l.Key == key {
			return l, true
		}
	}
	return Location{}, false
}

func FindSystemType(key string) (SystemType, bool) {
	for _, s := range SystemTypes {
		if s.Key == key {
			return s, true
		}
	}
	return SystemType{}, false
}

func findBrand(brands []Brand, key string) (Brand, bool) {
	for _, b := range brands {
		if b.Key == key {
			return b, true
		}
	}
	return Brand{}, false
}

// Catalog is the full set of options a form can offer.
type Catalog struct {
	Locations      []Location   `json:"locations"`
	SystemTypes    []SystemType `json:"system_types"`
	PanelBrands    []Brand      `json:"panel_brands"`
	InverterBrands []Brand      `json:"inverter_brands"`
	WiringBrands   []Brand      `json:"wiring_brands"`
	Bill           Range        `json:"monthly_bill"`
	RoofArea       Range        `json:"roof_area"`
	Capacity       Range        `json:"system_size"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Locations:      Locations,
		SystemTypes:    SystemTypes,
		PanelBrands:    PanelBrands,
		InverterBrands: InverterBrands,
		WiringBrands:   WiringBrands,
		Bill:           BillRange,
		RoofArea:       RoofAreaRange,
		Capacity:       CapacityRange,
	}
}
