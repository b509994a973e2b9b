// Package api implements the HTTP REST API for Agro Sirius Core.
//
// This package provides:
//   - Plot boundary definition, listing and reset
//   - Sowing report submission and ledger queries with crop/node filters
//   - Reconciled plots as JSON and GeoJSON, and the farm summary
//   - Ledger statistics per node and per day
//   - An .xlsx export of the current snapshot
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The server is a thin JSON layer. Every read of plots or summaries takes
// a fresh snapshot from the farm service, which reads the registry and the
// ledger and reconciles them. Writes go straight to the registry or the
// ledger; the next snapshot reflects them.
//
// # Graceful Degradation
//
// MQTT and InfluxDB are optional. Without them the metrics endpoint reports
// them as disconnected and everything else keeps working.
package api
