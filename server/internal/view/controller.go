package view

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/aggregate"
	"github.com/launchdash/launchdash/server/internal/filter"
)

// ErrUnknownSite is returned when a concrete site is not in the dataset.
var ErrUnknownSite = errors.New("unknown launch site")

// Source is the record set a Controller filters. *store.Store satisfies it.
type Source interface {
	Records() []types.LaunchRecord
	HasSite(site string) bool
}

// Observer is notified about recomputations. Implementations must be safe
// for concurrent use.
type Observer interface {
	Recomputed(out Output, took time.Duration)
	Discarded(out Output)
}

// Views holds the current value of both output cells.
type Views struct {
	Summary     types.ProportionChart  `json:"summary"`
	Correlation types.CorrelationChart `json:"correlation"`
}

// Update reports the outcome of one input write. Only the outputs listed in
// Changed are set.
type Update struct {
	Revision    uint64                  `json:"revision"`
	Changed     []Output                `json:"changed"`
	Discarded   []Output                `json:"discarded,omitempty"`
	Summary     *types.ProportionChart  `json:"summary,omitempty"`
	Correlation *types.CorrelationChart `json:"correlation,omitempty"`
}

// State is the current value of both input cells.
type State struct {
	Site  types.SiteSelection `json:"site"`
	Range types.PayloadRange  `json:"range"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithLabeler sets the outcome labeler used for summary slices.
func WithLabeler(l aggregate.Labeler) Option {
	return func(c *Controller) { c.labeler = l }
}

// WithObserver registers o for recomputation events.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithRange sets the initial payload range instead of the full domain.
func WithRange(rng types.PayloadRange) Option {
	return func(c *Controller) { c.rng = rng.Normalize() }
}

// Controller is the reactive state machine for one dashboard session.
// It is safe for concurrent use.
type Controller struct {
	src      Source
	labeler  aggregate.Labeler
	observer Observer

	mu       sync.Mutex
	site     types.SiteSelection
	rng      types.PayloadRange
	versions [numInputs]uint64
	views    Views
	revision uint64
}

// New returns a Controller selecting every site over the full payload domain,
// with both outputs already computed.
func New(src Source, opts ...Option) *Controller {
	c := &Controller{
		src:     src,
		labeler: aggregate.NewLabeler(nil),
		site:    types.AllSites,
		rng:     types.DefaultPayloadRange(),
	}
	for _, o := range opts {
		o(c)
	}
	c.views.Summary = c.compute(OutputSummary, c.site, c.rng).summary
	c.views.Correlation = c.compute(OutputCorrelation, c.site, c.rng).correlation
	return c
}

// SetSite writes the site cell. An unknown concrete site is rejected and
// leaves every cell unchanged.
func (c *Controller) SetSite(sel types.SiteSelection) (Update, error) {
	if sel.IsAll() {
		sel = types.AllSites
	} else if !c.src.HasSite(sel.Site()) {
		return Update{}, fmt.Errorf("view: %w: %q", ErrUnknownSite, sel.Site())
	}
	p := c.begin(InputSite, func() { c.site = sel })
	return c.commit(p, c.run(p)), nil
}

// SetRange writes the range cell. Inverted ranges are swapped first.
func (c *Controller) SetRange(rng types.PayloadRange) Update {
	rng = rng.Normalize()
	p := c.begin(InputRange, func() { c.rng = rng })
	return c.commit(p, c.run(p))
}

// Views returns the current output cells.
func (c *Controller) Views() Views {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.views
}

// State returns the current input cells.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Site: c.site, Range: c.rng}
}

// Revision counts committed updates.
func (c *Controller) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

// --- internal ---------------------------------------------------------------

// pending is an input write whose dependent outputs are being recomputed.
type pending struct {
	input    Input
	site     types.SiteSelection
	rng      types.PayloadRange
	versions [numInputs]uint64
}

type result struct {
	out         Output
	summary     types.ProportionChart
	correlation types.CorrelationChart
}

func (c *Controller) begin(in Input, write func()) pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	write()
	c.versions[in]++
	return pending{input: in, site: c.site, rng: c.rng, versions: c.versions}
}

func (c *Controller) run(p pending) []result {
	outs := Dependents(p.input)
	results := make([]result, 0, len(outs))
	for _, out := range outs {
		results = append(results, c.compute(out, p.site, p.rng))
	}
	return results
}

func (c *Controller) commit(p pending, results []result) Update {
	c.mu.Lock()
	defer c.mu.Unlock()

	upd := Update{Changed: make([]Output, 0, len(results))}
	for _, res := range results {
		if !c.fresh(res.out, p.versions) {
			upd.Discarded = append(upd.Discarded, res.out)
			if c.observer != nil {
				c.observer.Discarded(res.out)
			}
			continue
		}
		switch res.out {
		case OutputSummary:
			c.views.Summary = res.summary
			s := res.summary
			upd.Summary = &s
		case OutputCorrelation:
			c.views.Correlation = res.correlation
			cc := res.correlation
			upd.Correlation = &cc
		}
		upd.Changed = append(upd.Changed, res.out)
	}
	if len(upd.Changed) > 0 {
		c.revision++
	}
	upd.Revision = c.revision
	return upd
}

// fresh reports whether the inputs of out still have the versions seen.
// Caller holds c.mu.
func (c *Controller) fresh(out Output, seen [numInputs]uint64) bool {
	for _, in := range dependencies[out] {
		if c.versions[in] != seen[in] {
			return false
		}
	}
	return true
}

// compute re-filters the full record set for out. The summary applies only
// the site predicate.
func (c *Controller) compute(out Output, site types.SiteSelection, rng types.PayloadRange) result {
	start := time.Now()
	res := result{out: out}
	records := c.src.Records()
	switch out {
	case OutputSummary:
		res.summary = SummaryChart(c.labeler, records, site)
	case OutputCorrelation:
		res.correlation = CorrelationChart(records, site, rng)
	}
	if c.observer != nil {
		c.observer.Recomputed(out, time.Since(start))
	}
	return res
}

// SummaryChart computes the summary output for site without any controller
// state. The payload range does not take part.
func SummaryChart(l aggregate.Labeler, records []types.LaunchRecord, site types.SiteSelection) types.ProportionChart {
	view := filter.Select(records, filter.BySite(site))
	return l.ProportionChart(site, aggregate.SummarizeOutcomes(view))
}

// CorrelationChart computes the correlation output for site and rng without
// any controller state.
func CorrelationChart(records []types.LaunchRecord, site types.SiteSelection, rng types.PayloadRange) types.CorrelationChart {
	view := filter.Filter(records, site, rng)
	return aggregate.CorrelationChart(aggregate.ProjectCorrelationPoints(view))
}

// Compute returns both outputs for the given inputs without any controller
// state.
func Compute(l aggregate.Labeler, records []types.LaunchRecord, site types.SiteSelection, rng types.PayloadRange) Views {
	return Views{
		Summary:     SummaryChart(l, records, site),
		Correlation: CorrelationChart(records, site, rng),
	}
}
