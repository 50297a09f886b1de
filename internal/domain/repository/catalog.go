package repository

import (
	"context"

	"github.com/oksasatya/rentivu/internal/domain/entity"
)

// RentalCatalog is the read-only source of listings.
type RentalCatalog interface {
	All(ctx context.Context) ([]entity.Rental, error)
}
