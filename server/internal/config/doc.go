// Package config loads the launchdash server configuration from a YAML file
// and applies LAUNCHDASH_* environment overrides on top.
//
// Config fields:
//   - Server.HTTPPort        REST API, WebSocket and metrics port (default 8050)
//   - Server.LogLevel        debug | info | warn | error (default info)
//   - Server.UIDir           optional static UI directory
//   - Dataset.Path           launch table to load (default spacex_launch_dash.csv)
//   - Dataset.Format         auto | csv | csv.br | sqlite (default auto)
//   - Dataset.Table          SQLite table (default launches)
//   - Dataset.OutcomeLabels  class → slice label overrides
//   - Controls.*             payload slider bounds, step and mark spacing
//   - Session.*              WebSocket ping period and send buffer depth
//
// Load(path) applies defaults before unmarshalling, then env overrides, then
// validates. Watch(ctx, path, fn) reloads the file on change.
package config
