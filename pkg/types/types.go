package types

import "strings"

// Payload bounds and step of the range control.
const (
	PayloadDomainMin = 0.0
	PayloadDomainMax = 10000.0
	PayloadStep      = 100.0
)

// Axis labels of the correlation chart.
const (
	AxisPayload = "Payload Mass (kg)"
	AxisOutcome = "Launch Outcome"
)

// LaunchRecord is one row of the launch dataset. Records are immutable once
// loaded and owned by the record store.
type LaunchRecord struct {
	Site            string  `json:"site" db:"launch_site"`
	PayloadMassKg   float64 `json:"payload_mass_kg" db:"payload_mass_kg"`
	OutcomeClass    int     `json:"class" db:"class"`
	BoosterCategory string  `json:"booster_category" db:"booster_category"`
}

// AllSites is the sentinel selection that matches every launch site.
const AllSites SiteSelection = "ALL"

// SiteSelection is the value of the site selector: either AllSites or one
// concrete site identifier.
type SiteSelection string

// IsAll reports whether s selects every site. The empty selection is treated
// as AllSites.
func (s SiteSelection) IsAll() bool {
	return s == AllSites || strings.TrimSpace(string(s)) == ""
}

// Site returns the concrete site identifier, or "" when s is AllSites.
func (s SiteSelection) Site() string {
	if s.IsAll() {
		return ""
	}
	return string(s)
}

// Matches reports whether site satisfies the selection.
func (s SiteSelection) Matches(site string) bool {
	return s.IsAll() || string(s) == site
}

// PayloadRange is an inclusive payload-mass interval in kilograms.
type PayloadRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultPayloadRange spans the full payload domain of the range control.
func DefaultPayloadRange() PayloadRange {
	return PayloadRange{Min: PayloadDomainMin, Max: PayloadDomainMax}
}

// Normalize returns r with its ends swapped when Min > Max and negative ends
// floored at zero.
func (r PayloadRange) Normalize() PayloadRange {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	if r.Min < 0 {
		r.Min = 0
	}
	if r.Max < 0 {
		r.Max = 0
	}
	return r
}

// Contains reports whether kg lies inside r, both ends inclusive.
// r must already be normalized.
func (r PayloadRange) Contains(kg float64) bool {
	return r.Min <= kg && kg <= r.Max
}

// Within reports whether r is a sub-interval of other.
func (r PayloadRange) Within(other PayloadRange) bool {
	return other.Min <= r.Min && r.Max <= other.Max
}

// OutcomeSummary maps an outcome class to the number of records with it.
type OutcomeSummary map[int]int

// Total returns the sum of all counts.
func (s OutcomeSummary) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// CorrelationPoint is one record projected for the correlation chart.
type CorrelationPoint struct {
	X        float64 `json:"x"`
	Y        int     `json:"y"`
	Category string  `json:"category"`
}

// Slice is one wedge of a proportion chart.
type Slice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ProportionChart is the declarative descriptor of the outcome breakdown.
type ProportionChart struct {
	Title  string  `json:"title"`
	Slices []Slice `json:"slices"`
}

// Point is one marker of a correlation chart. Hover is the label shown when
// the marker is pointed at.
type Point struct {
	X             float64 `json:"x"`
	Y             int     `json:"y"`
	ColorCategory string  `json:"colorCategory"`
	Hover         string  `json:"hover,omitempty"`
}

// AxisLabels names the axes of a correlation chart.
type AxisLabels struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// CorrelationChart is the declarative descriptor of the payload/outcome
// scatter view.
type CorrelationChart struct {
	Title      string     `json:"title"`
	Points     []Point    `json:"points"`
	AxisLabels AxisLabels `json:"axisLabels"`
}
