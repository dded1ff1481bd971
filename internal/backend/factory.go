package backend

import (
	"fmt"

	"budgetbook/internal/log"
	"budgetbook/internal/mirror"
	"budgetbook/internal/mirror/postgres"
	"budgetbook/internal/mirror/sheets"
)

// NewOpener returns the destination opener selected by the config.
func NewOpener(cfg Config) (mirror.Opener, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case PostgresDestination:
		return postgres.Opener(cfg.PostgresDSN()), nil
	case SheetsDestination:
		return sheets.Opener(cfg.SpreadsheetID, cfg.Credentials), nil
	default:
		return nil, fmt.Errorf("unsupported destination type: %s", cfg.Type)
	}
}

// NewSynchronizer wires the source, the configured destination and the
// column mapping. Opening the destination is deferred to each run.
func NewSynchronizer(source mirror.SourceReader, cfg Config) (*mirror.Synchronizer, error) {
	open, err := NewOpener(cfg)
	if err != nil {
		return nil, fmt.Errorf("sync destination: %w", err)
	}

	mapping := mirror.DefaultMapping()
	if cfg.MappingFile != "" {
		mapping, err = mirror.LoadMappingFile(cfg.MappingFile)
		if err != nil {
			return nil, fmt.Errorf("load column mapping: %w", err)
		}
	}

	logger := log.Default().WithComponent(log.ComponentSync)
	logger.Info("Synchronizer configured",
		"destination", cfg.Type.String(),
		"mapping_file", cfg.MappingFile)

	return mirror.NewSynchronizer(source, open,
		mirror.WithMapping(mapping),
		mirror.WithLogger(logger)), nil
}
