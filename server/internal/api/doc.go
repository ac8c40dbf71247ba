// Package api implements the HTTP REST API for launchdash-server.
//
// New(store, labeler, controls) returns an http.Handler that serves:
//
//	GET /api/v1/health                     dataset size and payload domain
//	GET /api/v1/layout                     dropdown, slider and chart slot descriptors
//	GET /api/v1/sites                      distinct launch sites
//	GET /api/v1/views?site=&min=&max=      both chart descriptors
//	GET /api/v1/charts/outcomes?site=      proportion chart descriptor
//	GET /api/v1/charts/correlation?...     correlation chart descriptor
//	GET /api/v1/charts/outcomes.png        proportion chart image (204 when empty)
//	GET /api/v1/charts/correlation.png     correlation chart image (204 when empty)
//	GET /api/v1/records?site=&min=&max=    filtered launch records
//
// All endpoints:
//   - Return 405 for non-GET methods
//   - Return 400 for an unknown site or a non-numeric min/max
//   - Treat a missing site as "ALL" and a missing bound as the control limit
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
