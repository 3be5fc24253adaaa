// Package cmtharvest harvests the Global CMT catalog search results and
// reconstructs the event reports into a deterministic CSV table.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package cmtharvest
