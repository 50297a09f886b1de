// Package catalog serves the fixed list of rental listings compiled into the binary.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/oksasatya/rentivu/internal/domain/entity"
	"github.com/oksasatya/rentivu/internal/domain/repository"
)

//go:embed rentals.json
var rentalsJSON []byte

// Static is an in-memory catalog. Callers get a copy so they may sort freely.
type Static struct {
	rentals []entity.Rental
}

// NewStatic builds a catalog from the embedded listing file.
func NewStatic() (*Static, error) {
	return Parse(rentalsJSON)
}

// Parse decodes a JSON array of rentals.
func Parse(raw []byte) (*Static, error) {
	var rentals []entity.Rental
	if err := json.Unmarshal(raw, &rentals); err != nil {
		return nil, fmt.Errorf("decode rental catalog: %w", err)
	}
	return &Static{rentals: rentals}, nil
}

func (s *Static) All(_ context.Context) ([]entity.Rental, error) {
	out := make([]entity.Rental, len(s.rentals))
	copy(out, s.rentals)
	return out, nil
}

var _ repository.RentalCatalog = (*Static)(nil)
