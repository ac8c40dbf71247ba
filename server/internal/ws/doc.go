// Package ws implements the WebSocket session hub for launchdash-server.
//
// Every connection is an independent dashboard session with its own
// view.Controller. Selections made in one session never reach another.
//
// New(source, opts) creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all sessions.
// Hub.ServeHTTP upgrades an HTTP connection, sends the initial views, then
// answers each control message.
//
// Server to client:
//
//	{"event": "views",  "session": "<uuid>", "data": {"summary": ..., "correlation": ...}}
//	{"event": "update", "data": {"revision": 1, "changed": ["correlation"], "correlation": ...}}
//	{"event": "error",  "error": "view: unknown launch site: \"X\""}
//
// Client to server:
//
//	{"event": "select_site", "site": "KSC LC-39A"}
//	{"event": "set_range",   "min": 2000, "max": 6000}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/session by the server.
package ws
