// Package backend builds the synchronizer and its destination from the
// application configuration.
package backend

import (
	"budgetbook/internal/mirror/postgres"
	"budgetbook/internal/mirror/sheets"
)

// DestinationType selects the store the synchronizer copies into.
type DestinationType string

const (
	PostgresDestination DestinationType = "postgres"
	SheetsDestination   DestinationType = "sheets"
)

// String implements fmt.Stringer
func (dt DestinationType) String() string {
	return string(dt)
}

// IsValid returns true if the destination type is valid
func (dt DestinationType) IsValid() bool {
	switch dt {
	case PostgresDestination, SheetsDestination:
		return true
	default:
		return false
	}
}

// Config holds everything needed to reach a destination.
type Config struct {
	Type DestinationType

	// Postgres: DSN wins over the endpoint when both are set
	DSN      string
	Endpoint postgres.Endpoint

	// Google Sheets
	SpreadsheetID string
	Credentials   sheets.Credentials

	MappingFile string
}
