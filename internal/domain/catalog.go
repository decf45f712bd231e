package domain

import "sort"

// PriceEntry is one appliance and its base service charge in rupees.
type PriceEntry struct {
	Appliance string `json:"appliance" yaml:"appliance"`
	Charge    int    `json:"charge" yaml:"charge"`
}

// Catalog is the fixed appliance price list. Charges are informational only.
type Catalog struct {
	entries []PriceEntry
	index   map[string]int
}

// DefaultPriceList is the shop's published rate card.
var DefaultPriceList = []PriceEntry{
	{Appliance: "Ceiling Fan", Charge: 200},
	{Appliance: "Gas Stove", Charge: 250},
	{Appliance: "Geyser", Charge: 250},
	{Appliance: "AC", Charge: 350},
	{Appliance: "Cooler", Charge: 300},
	{Appliance: "Washing Machine", Charge: 320},
	{Appliance: "Iron", Charge: 180},
	{Appliance: "Mixer Machine", Charge: 190},
	{Appliance: "Microwave", Charge: 350},
	{Appliance: "Heater", Charge: 160},
	{Appliance: "Fridge", Charge: 340},
	{Appliance: "Bike", Charge: 600},
	{Appliance: "Car", Charge: 1000},
}

// NewCatalog builds a catalog; later duplicates override earlier ones.
func NewCatalog(entries []PriceEntry) *Catalog {
	c := &Catalog{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if e.Appliance == "" {
			continue
		}
		if i, ok := c.index[e.Appliance]; ok {
			c.entries[i] = e
			continue
		}
		c.index[e.Appliance] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// Entries returns the price list sorted by appliance name.
func (c *Catalog) Entries() []PriceEntry {
	out := make([]PriceEntry, len(c.entries))
	copy(out, c.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Appliance < out[j].Appliance })
	return out
}

// Charge returns the listed charge for an appliance.
func (c *Catalog) Charge(appliance string) (int, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := c.index[appliance]
	if !ok {
		return 0, false
	}
	return c.entries[i].Charge, true
}
