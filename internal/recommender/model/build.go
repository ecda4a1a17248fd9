package model

// ComponentKeys enumerates the fixed component categories of a build, in the
// order they are summed and rendered. The wire names double as JSON keys.
var ComponentKeys = []string{"cpu", "gpu", "ram", "storage", "motherboard", "psu", "case", "cooler"}

// ComponentSpec is one priced part inside a build. Prices are Thai Baht.
type ComponentSpec struct {
	Name  string  `json:"name"`
	Price float64 `json:"price_thb"`
}

// Build is a single reconciled PC configuration. The JSON field names follow
// the wire format the model is instructed to produce, so a reconciled build
// serialises back into the same shape it was parsed from.
type Build struct {
	Name        string         `json:"build_name"`
	CPU         *ComponentSpec `json:"cpu,omitempty"`
	GPU         *ComponentSpec `json:"gpu,omitempty"`
	RAM         *ComponentSpec `json:"ram,omitempty"`
	Storage     *ComponentSpec `json:"storage,omitempty"`
	Motherboard *ComponentSpec `json:"motherboard,omitempty"`
	PSU         *ComponentSpec `json:"psu,omitempty"`
	Case        *ComponentSpec `json:"case,omitempty"`
	Cooler      *ComponentSpec `json:"cooler,omitempty"`

	// TotalPrice is the declared total after reconciliation; CalculatedTotal
	// is the exact sum of the present component prices. PriceNote is set
	// whenever the declared total had to be corrected.
	TotalPrice      float64 `json:"total_price_estimate_thb"`
	CalculatedTotal float64 `json:"calculated_total_price_thb"`
	PriceNote       string  `json:"price_calculation_note,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// Component returns the spec stored under the given component key, or nil.
func (b *Build) Component(key string) *ComponentSpec {
	switch key {
	case "cpu":
		return b.CPU
	case "gpu":
		return b.GPU
	case "ram":
		return b.RAM
	case "storage":
		return b.Storage
	case "motherboard":
		return b.Motherboard
	case "psu":
		return b.PSU
	case "case":
		return b.Case
	case "cooler":
		return b.Cooler
	}
	return nil
}

// SetComponent stores the spec under the given component key. Unknown keys
// are ignored.
func (b *Build) SetComponent(key string, c *ComponentSpec) {
	switch key {
	case "cpu":
		b.CPU = c
	case "gpu":
		b.GPU = c
	case "ram":
		b.RAM = c
	case "storage":
		b.Storage = c
	case "motherboard":
		b.Motherboard = c
	case "psu":
		b.PSU = c
	case "case":
		b.Case = c
	case "cooler":
		b.Cooler = c
	}
}
