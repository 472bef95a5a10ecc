package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ricemill/internal/domain/ledger"
)

// LoadCatalog reads a YAML variety catalog. Lists left out of the file
// keep their defaults.
//
//	riceTypes: [Basmati, Nadu, Samba]
//	paddyTypes: [Nadu, Samba, Keeri Samba]
//	units: [kg, bags]
//	grades: [A, B]
func LoadCatalog(path string) (ledger.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ledger.Catalog{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cat ledger.Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return ledger.Catalog{}, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	return cat.WithDefaults(), nil
}
