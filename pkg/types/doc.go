// Package types defines the shared Go types of the launch dashboard: the
// immutable launch record, the two filter inputs (site selection and payload
// range), and the declarative chart descriptors handed to renderers and
// browser clients.
//
// These are the canonical in-memory representations, separate from any JSON
// envelope the server wraps them in.
package types
