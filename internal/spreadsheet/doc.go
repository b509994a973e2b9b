// Package spreadsheet lets the farm run from an .xlsx workbook instead of
// SQLite, and renders reports as workbooks.
//
// The workbook keeps the layout field offices already use. One sheet holds
// the sowing reports (columns A to K: id, timestamp, node, crop, variety,
// block, sector, hectares, GPS latitude, GPS longitude, notes) and another
// holds the surveyed boundaries (columns A to H: block, sector, crop,
// variety, hectares, polygon coordinates as JSON, colour, created at).
// Row 1 of each sheet is a header.
//
// The file is reopened on every call, so edits made by hand between calls
// are picked up. Calls on one Workbook are serialised.
package spreadsheet
