package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/contractly/contractly/internal/billing"
)

var ErrFailedToLoadCatalog = errors.New("catalog: failed to load plan catalog file")

// planFile is the YAML schema. Prices are strings so they go straight into
// decimal without a float detour.
type planFile struct {
	Plans []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Price       string `yaml:"price"`
		StorageGB   int64  `yaml:"storage_gb"`
		ClientLimit int64  `yaml:"client_limit"`
		Active      bool   `yaml:"active"`
	} `yaml:"plans"`
}

// LoadFile reads a YAML plan catalog and returns a Static catalog over it.
//
// Example file:
//
//	plans:
//	  - id: 8a6e0804-2bd0-4672-b79d-d97027f9071a
//	    name: Starter
//	    price: "49.90"
//	    storage_gb: 10
//	    client_limit: 50
//	    active: true
func LoadFile(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	var file planFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	if len(file.Plans) == 0 {
		return nil, errors.Join(ErrFailedToLoadCatalog, errors.New("no plans defined"))
	}

	plans := make([]billing.Plan, 0, len(file.Plans))
	for _, p := range file.Plans {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, errors.Join(ErrFailedToLoadCatalog, fmt.Errorf("plan %q: %w", p.Name, err))
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, errors.Join(ErrFailedToLoadCatalog, fmt.Errorf("plan %q: %w", p.Name, err))
		}
		if price.IsNegative() {
			return nil, errors.Join(ErrFailedToLoadCatalog, fmt.Errorf("plan %q: negative price", p.Name))
		}
		plans = append(plans, billing.Plan{
			ID:          id,
			Name:        p.Name,
			Description: p.Description,
			Price:       price,
			StorageGB:   p.StorageGB,
			ClientLimit: p.ClientLimit,
			Active:      p.Active,
		})
	}

	return NewStatic(plans...), nil
}
