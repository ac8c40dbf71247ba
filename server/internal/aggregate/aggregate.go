package aggregate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/launchdash/launchdash/pkg/types"
)

// Chart titles.
const (
	TitleAllSites    = "Total Success Launches"
	TitleSiteFormat  = "Success Launches for %s"
	TitleCorrelation = "Payload vs Launch Outcome"
	EmptySuffix      = " (no matching launches)"
)

// DefaultOutcomeLabels names the two outcome classes of the dataset.
var DefaultOutcomeLabels = map[int]string{
	1: "success",
	0: "failure",
}

// SummarizeOutcomes counts the records of view per outcome class.
func SummarizeOutcomes(view []types.LaunchRecord) types.OutcomeSummary {
	out := make(types.OutcomeSummary)
	for _, r := range view {
		out[r.OutcomeClass]++
	}
	return out
}

// ProjectCorrelationPoints maps each record of view to a correlation point.
// The result has the same length and order as view and is never nil.
func ProjectCorrelationPoints(view []types.LaunchRecord) []types.CorrelationPoint {
	out := make([]types.CorrelationPoint, len(view))
	for i, r := range view {
		out[i] = types.CorrelationPoint{
			X:        r.PayloadMassKg,
			Y:        r.OutcomeClass,
			Category: r.BoosterCategory,
		}
	}
	return out
}

// Labeler turns outcome classes into slice labels.
type Labeler struct {
	labels map[int]string
}

// NewLabeler returns a Labeler using overrides on top of DefaultOutcomeLabels.
func NewLabeler(overrides map[int]string) Labeler {
	labels := make(map[int]string, len(DefaultOutcomeLabels)+len(overrides))
	for k, v := range DefaultOutcomeLabels {
		labels[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			labels[k] = v
		}
	}
	return Labeler{labels: labels}
}

// Label returns the display label of class. Unnamed classes use their
// decimal form.
func (l Labeler) Label(class int) string {
	labels := l.labels
	if labels == nil {
		labels = DefaultOutcomeLabels
	}
	if s, ok := labels[class]; ok {
		return s
	}
	return strconv.Itoa(class)
}

// SummaryTitle returns the proportion chart title for sel.
func SummaryTitle(sel types.SiteSelection, total int) string {
	title := TitleAllSites
	if !sel.IsAll() {
		title = fmt.Sprintf(TitleSiteFormat, sel.Site())
	}
	if total == 0 {
		title += EmptySuffix
	}
	return title
}

// CorrelationTitle returns the correlation chart title.
func CorrelationTitle(points int) string {
	if points == 0 {
		return TitleCorrelation + EmptySuffix
	}
	return TitleCorrelation
}

// ProportionChart builds the outcome breakdown descriptor. Slices are ordered
// by count descending, ties broken by class ascending.
func (l Labeler) ProportionChart(sel types.SiteSelection, summary types.OutcomeSummary) types.ProportionChart {
	classes := make([]int, 0, len(summary))
	for class, n := range summary {
		if n > 0 {
			classes = append(classes, class)
		}
	}
	sort.Slice(classes, func(i, j int) bool {
		ci, cj := summary[classes[i]], summary[classes[j]]
		if ci != cj {
			return ci > cj
		}
		return classes[i] < classes[j]
	})

	slices := make([]types.Slice, 0, len(classes))
	for _, class := range classes {
		slices = append(slices, types.Slice{Label: l.Label(class), Value: summary[class]})
	}
	return types.ProportionChart{
		Title:  SummaryTitle(sel, summary.Total()),
		Slices: slices,
	}
}

// CorrelationChart builds the scatter descriptor. Each point is colored and
// hover-labelled by its booster category.
func CorrelationChart(points []types.CorrelationPoint) types.CorrelationChart {
	out := make([]types.Point, len(points))
	for i, p := range points {
		out[i] = types.Point{X: p.X, Y: p.Y, ColorCategory: p.Category, Hover: p.Category}
	}
	return types.CorrelationChart{
		Title:      CorrelationTitle(len(points)),
		Points:     out,
		AxisLabels: types.AxisLabels{X: types.AxisPayload, Y: types.AxisOutcome},
	}
}

// Categories returns the distinct booster categories of points in
// first-occurrence order.
func Categories(points []types.Point) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range points {
		if _, ok := seen[p.ColorCategory]; ok {
			continue
		}
		seen[p.ColorCategory] = struct{}{}
		out = append(out, p.ColorCategory)
	}
	return out
}
