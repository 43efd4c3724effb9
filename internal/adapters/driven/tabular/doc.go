// Package tabular implements the CSV input and output surfaces.
//
// The tool's files are deliberately spreadsheet-shaped: a resolved
// map and a review sheet out of the resolution phase, and a long-form
// plus wide pivot table out of the enumeration phase.
package tabular
