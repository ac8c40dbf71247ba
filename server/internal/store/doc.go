// Package store holds the launch dataset in memory. A Store is built once by
// Load and is read-only afterwards, so it is safe to share between any number
// of goroutines without locking.
//
// Supported sources:
//   - csv     plain CSV, read through a read-only memory map
//   - csv.br  brotli-compressed CSV
//   - sqlite  a table written by the importer (see internal/importer)
//   - auto    picked from the file extension and sniffed content type
//
// Any failure to produce a usable table is reported as a *LoadError.
package store
