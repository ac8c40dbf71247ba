// Package filter selects launch records by site and payload mass.
//
// Every function here is pure: it never modifies its input and returns the
// same output for the same arguments, so it can be re-run on every input
// change without coordination.
package filter

import "github.com/launchdash/launchdash/pkg/types"

// Predicate reports whether a record belongs in a view.
type Predicate func(types.LaunchRecord) bool

// BySite matches records launched from the selected site, or every record
// when sel is AllSites.
func BySite(sel types.SiteSelection) Predicate {
	if sel.IsAll() {
		return func(types.LaunchRecord) bool { return true }
	}
	site := string(sel)
	return func(r types.LaunchRecord) bool { return r.Site == site }
}

// InRange matches records whose payload mass lies in rng, both ends
// inclusive. rng is normalized first, so an inverted range is swapped.
func InRange(rng types.PayloadRange) Predicate {
	rng = rng.Normalize()
	return func(r types.LaunchRecord) bool { return rng.Contains(r.PayloadMassKg) }
}

// Select returns the records satisfying every predicate, in input order.
// The result is never nil.
func Select(records []types.LaunchRecord, preds ...Predicate) []types.LaunchRecord {
	out := make([]types.LaunchRecord, 0, len(records))
next:
	for _, r := range records {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// Filter returns the records launched from sel whose payload lies in rng.
func Filter(records []types.LaunchRecord, sel types.SiteSelection, rng types.PayloadRange) []types.LaunchRecord {
	return Select(records, BySite(sel), InRange(rng))
}
