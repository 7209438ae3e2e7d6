// Package picakit contains tools to convert PICA+ catalog data (as exported
// in the legacy "Importformat") into linked archival XML objects with stable,
// generated identifiers.
package picakit

// Version of the picakit tools.
const Version = "0.1.0"
