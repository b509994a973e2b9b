// Package aggregate derives farm-level views from painted plots and from
// the sowing ledger.
//
// The plot views (ByCrop, ByBlock, Count, Summarise) read area only from
// reconciled geometry. The ledger views (ByNode, Timeline and friends)
// read the hectares crews claimed in their reports and never mix with the
// geometric totals. Every function here is pure.
package aggregate
