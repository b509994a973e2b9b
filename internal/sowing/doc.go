// Package sowing is the append-only ledger of sowing reports sent by field
// nodes (tablets and handhelds carried by the planting crews).
//
// Reports arrive as JSON over MQTT or HTTP. Required fields are checked
// once, when a report is turned into an Event; after that the ledger only
// stores and lists. Nothing in the ledger is ever edited or removed.
//
// Matching an event to a plot is by exact (block, sector) text. An event
// naming a plot that has no boundary stays in the ledger but never paints
// anything.
package sowing
