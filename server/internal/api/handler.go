package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/aggregate"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/render"
	"github.com/launchdash/launchdash/server/internal/store"
	"github.com/launchdash/launchdash/server/internal/view"
)

// Dashboard layout constants.
const (
	DashboardTitle      = "SpaceX Launch Records Dashboard"
	AllSitesLabel       = "All Sites"
	DropdownID          = "site-dropdown"
	DropdownPlaceholder = "Select a Launch Site here"
	SliderID            = "payload-slider"
	SliderLabel         = "Payload range (Kg):"
	SummaryChartID      = "success-pie-chart"
	CorrelationChartID  = "success-payload-scatter-chart"
)

// errBadRequest marks query parameters that cannot be used.
var errBadRequest = errors.New("bad request")

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads the frozen record store and computes views per request; it keeps
// no filter state between requests.
type Handler struct {
	store    *store.Store
	labeler  aggregate.Labeler
	controls config.ControlsConfig
	mux      *http.ServeMux
}

// New creates a Handler wired to the given record store and registers all
// routes.
func New(st *store.Store, labeler aggregate.Labeler, controls config.ControlsConfig) http.Handler {
	h := &Handler{store: st, labeler: labeler, controls: controls, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/layout", h.layout)
	h.mux.HandleFunc("/api/v1/sites", h.sites)
	h.mux.HandleFunc("/api/v1/views", h.views)
	h.mux.HandleFunc("/api/v1/charts/outcomes", h.outcomes)
	h.mux.HandleFunc("/api/v1/charts/correlation", h.correlation)
	h.mux.HandleFunc("/api/v1/charts/outcomes.png", h.outcomesPNG)
	h.mux.HandleFunc("/api/v1/charts/correlation.png", h.correlationPNG)
	h.mux.HandleFunc("/api/v1/records", h.records)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health: dataset size and payload domain.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Records: h.store.Len(),
		Sites:   len(h.store.DistinctSites()),
	}
	if lo, hi, ok := h.store.PayloadDomain(); ok {
		resp.PayloadMin, resp.PayloadMax = lo, hi
	} else {
		resp.Status = "empty"
	}
	jsonResp(w, http.StatusOK, resp)
}

// layout returns GET /api/v1/layout: control and chart slot descriptors.
func (h *Handler) layout(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, BuildLayout(h.store.DistinctSites(), h.controls))
}

// sites returns GET /api/v1/sites: distinct sites in first-occurrence order.
func (h *Handler) sites(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, SitesResponse{Sites: h.store.DistinctSites()})
}

// views returns GET /api/v1/views?site=&min=&max=: both chart descriptors.
func (h *Handler) views(w http.ResponseWriter, r *http.Request) {
	st, ok := h.parseState(w, r)
	if !ok {
		return
	}
	jsonResp(w, http.StatusOK, ViewsResponse{
		State: st,
		Views: view.Compute(h.labeler, h.store.Records(), st.Site, st.Range),
	})
}

// outcomes returns GET /api/v1/charts/outcomes?site=: the proportion chart.
// The payload range is not part of this view.
func (h *Handler) outcomes(w http.ResponseWriter, r *http.Request) {
	st, ok := h.parseState(w, r)
	if !ok {
		return
	}
	jsonResp(w, http.StatusOK, view.SummaryChart(h.labeler, h.store.Records(), st.Site))
}

// correlation returns GET /api/v1/charts/correlation?site=&min=&max=.
func (h *Handler) correlation(w http.ResponseWriter, r *http.Request) {
	st, ok := h.parseState(w, r)
	if !ok {
		return
	}
	jsonResp(w, http.StatusOK, view.CorrelationChart(h.store.Records(), st.Site, st.Range))
}

// outcomesPNG returns the proportion chart as an image; 204 when empty.
func (h *Handler) outcomesPNG(w http.ResponseWriter, r *http.Request) {
	st, ok := h.parseState(w, r)
	if !ok {
		return
	}
	size, err := parseSize(r)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	c := view.SummaryChart(h.labeler, h.store.Records(), st.Site)
	writePNG(w, func(buf *pngBuffer) error { return render.Proportion(buf, c, size) })
}

// correlationPNG returns the correlation chart as an image; 204 when empty.
func (h *Handler) correlationPNG(w http.ResponseWriter, r *http.Request) {
	st, ok := h.parseState(w, r)
	if !ok {
		return
	}
	size, err := parseSize(r)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	c := view.CorrelationChart(h.store.Records(), st.Site, st.Range)
	writePNG(w, func(buf *pngBuffer) error {
		return render.Correlation(buf, c, size, h.controls.Range())
	})
}

// records returns GET /api/v1/records?site=&min=&max=: the filtered rows,
// answered from the store's payload index.
func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	st, ok := h.parseState(w, r)
	if !ok {
		return
	}
	rows := h.store.Query(st.Site, st.Range)
	jsonResp(w, http.StatusOK, RecordsResponse{State: st, Count: len(rows), Records: rows})
}

// --- helpers ----------------------------------------------------------------

// BuildLayout describes the dashboard controls for the given sites.
func BuildLayout(sites []string, controls config.ControlsConfig) LayoutResponse {
	options := make([]Option, 0, len(sites)+1)
	options = append(options, Option{Label: AllSitesLabel, Value: string(types.AllSites)})
	for _, s := range sites {
		options = append(options, Option{Label: s, Value: s})
	}

	marks := make(map[string]string)
	if controls.MarkEvery > 0 {
		for v := controls.PayloadMin; v <= controls.PayloadMax; v += controls.MarkEvery {
			k := strconv.FormatFloat(v, 'f', -1, 64)
			marks[k] = k
		}
	}

	return LayoutResponse{
		Title: DashboardTitle,
		Dropdown: DropdownLayout{
			ID:          DropdownID,
			Options:     options,
			Value:       string(types.AllSites),
			Placeholder: DropdownPlaceholder,
			Searchable:  true,
		},
		Slider: SliderLayout{
			ID:    SliderID,
			Label: SliderLabel,
			Min:   controls.PayloadMin,
			Max:   controls.PayloadMax,
			Step:  controls.PayloadStep,
			Marks: marks,
			Value: [2]float64{controls.PayloadMin, controls.PayloadMax},
		},
		Charts: []string{SummaryChartID, CorrelationChartID},
	}
}

// parseState reads site, min and max from the query string. Missing values
// fall back to all sites and the full control range. On failure it writes a
// 400 response and returns false.
func (h *Handler) parseState(w http.ResponseWriter, r *http.Request) (view.State, bool) {
	st, err := h.stateFromQuery(r)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return view.State{}, false
	}
	return st, true
}

func (h *Handler) stateFromQuery(r *http.Request) (view.State, error) {
	q := r.URL.Query()
	st := view.State{Site: types.AllSites, Range: h.controls.Range()}

	if site := types.SiteSelection(q.Get("site")); !site.IsAll() {
		if !h.store.HasSite(site.Site()) {
			return st, fmt.Errorf("%w: %q", view.ErrUnknownSite, site.Site())
		}
		st.Site = site
	}

	var err error
	if st.Range.Min, err = floatParam(q.Get("min"), st.Range.Min); err != nil {
		return st, fmt.Errorf("%w: min: %v", errBadRequest, err)
	}
	if st.Range.Max, err = floatParam(q.Get("max"), st.Range.Max); err != nil {
		return st, fmt.Errorf("%w: max: %v", errBadRequest, err)
	}
	st.Range = st.Range.Normalize()
	return st, nil
}

func floatParam(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func parseSize(r *http.Request) (render.Size, error) {
	var size render.Size
	q := r.URL.Query()
	for name, dst := range map[string]*int{"width": &size.Width, "height": &size.Height} {
		if s := q.Get(name); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return size, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, name)
			}
			*dst = n
		}
	}
	return size, nil
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
