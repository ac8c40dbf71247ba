// Package view implements the reactive layer of the dashboard.
//
// A Controller owns two input cells (site selection and payload range) and
// two output cells (outcome summary chart and correlation chart). The
// dependency table is explicit:
//
//	summary     <- site
//	correlation <- site, range
//
// The summary chart never reads the payload range, so moving the slider
// leaves it untouched.
//
// Writing an input recomputes exactly the outputs that depend on it, always
// from the full record set. Each input carries a version; a recomputation is
// committed only if the versions of its inputs are unchanged when it
// finishes, so the newest write to a cell always wins and stale results are
// dropped instead of merged.
package view
