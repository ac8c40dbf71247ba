// Package importer copies a launch CSV into a SQLite database so the server
// can load it with dataset.format = sqlite. The schema is managed with goose
// migrations embedded in the binary; re-importing replaces all rows.
package importer
