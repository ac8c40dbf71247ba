package api

import (
	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/view"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status     string  `json:"status"`
	Records    int     `json:"records"`
	Sites      int     `json:"sites"`
	PayloadMin float64 `json:"payload_min"`
	PayloadMax float64 `json:"payload_max"`
}

// Option is one entry of the site dropdown.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DropdownLayout describes the site selector.
type DropdownLayout struct {
	ID          string   `json:"id"`
	Options     []Option `json:"options"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder"`
	Searchable  bool     `json:"searchable"`
}

// SliderLayout describes the payload range control.
type SliderLayout struct {
	ID    string            `json:"id"`
	Label string            `json:"label"`
	Min   float64           `json:"min"`
	Max   float64           `json:"max"`
	Step  float64           `json:"step"`
	Marks map[string]string `json:"marks"`
	Value [2]float64        `json:"value"`
}

// LayoutResponse is the payload for GET /api/v1/layout: everything a client
// needs to draw the controls and chart slots.
type LayoutResponse struct {
	Title    string         `json:"title"`
	Dropdown DropdownLayout `json:"site_dropdown"`
	Slider   SliderLayout   `json:"payload_slider"`
	Charts   []string       `json:"charts"`
}

// SitesResponse is the payload for GET /api/v1/sites.
type SitesResponse struct {
	Sites []string `json:"sites"`
}

// ViewsResponse is the payload for GET /api/v1/views.
type ViewsResponse struct {
	State view.State `json:"state"`
	view.Views
}

// RecordsResponse is the payload for GET /api/v1/records.
type RecordsResponse struct {
	State   view.State           `json:"state"`
	Count   int                  `json:"count"`
	Records []types.LaunchRecord `json:"records"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
