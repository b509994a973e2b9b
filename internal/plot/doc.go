// Package plot manages the registry of surveyed plot boundaries.
//
// A plot is identified by its (block, sector) pair, compared exactly as
// entered: "Lote 1" and "lote 1" are different plots. Boundaries are kept
// in the order they were defined, and that order is the order the farm is
// painted and reported in.
//
// The Registry validates definitions and refuses duplicates. Storage sits
// behind the Repository interface, with a SQLite implementation here and a
// workbook implementation in the spreadsheet package.
package plot
