package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BartekS5/xtravels-migrate/pkg/models"
)

// defaultMapping is the fixed Travels / Bookings / Bookings.Supplements set.
//
//go:embed travels.json
var defaultMapping []byte

// DefaultMapping returns the built-in mapping set.
func DefaultMapping() (*models.MappingSet, error) {
	m, err := models.LoadMapping(defaultMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in mapping: %w", err)
	}
	return m, nil
}

// LoadMapping reads and parses a mapping file. An empty path selects the
// built-in set.
func LoadMapping(filePath string) (*models.MappingSet, error) {
	if filePath == "" {
		return DefaultMapping()
	}

	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file '%s': %w", filePath, err)
	}

	m, err := models.LoadMapping(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file '%s': %w", filePath, err)
	}
	return m, nil
}
