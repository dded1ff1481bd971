package backend

import (
	"fmt"

	"budgetbook/internal/config"
	"budgetbook/internal/mirror/postgres"
	"budgetbook/internal/mirror/sheets"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	dt := DestinationType(appConfig.SyncDestination)
	if !dt.IsValid() {
		return Config{}, fmt.Errorf("invalid sync destination in config: %s", appConfig.SyncDestination)
	}

	return Config{
		Type: dt,
		DSN:  appConfig.SyncDBDSN,
		Endpoint: postgres.Endpoint{
			Host:     appConfig.SyncDBHost,
			Port:     appConfig.SyncDBPort,
			User:     appConfig.SyncDBUser,
			Password: appConfig.SyncDBPassword,
			Database: appConfig.SyncDBName,
			SSLMode:  appConfig.SyncDBSSLMode,
		},
		SpreadsheetID: appConfig.GoogleSpreadsheetID,
		Credentials: sheets.Credentials{
			JSON: appConfig.GoogleServiceAccountJSON,
			File: appConfig.GoogleServiceAccountFile,
		},
		MappingFile: appConfig.SyncMappingFile,
	}, nil
}

// PostgresDSN returns the DSN, rendering it from the endpoint if needed.
func (c Config) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return c.Endpoint.DSN()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid destination type: %s", c.Type)
	}

	switch c.Type {
	case PostgresDestination:
		if c.DSN == "" && c.Endpoint.Host == "" {
			return fmt.Errorf("either a DSN or a host is required for postgres destination")
		}
	case SheetsDestination:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets destination")
		}
		if c.Credentials.JSON == "" && c.Credentials.File == "" {
			return fmt.Errorf("service account credentials are required for sheets destination")
		}
	}
	return nil
}
