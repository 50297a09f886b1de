package application

import (
	"context"
	"sort"
	"strings"

	"github.com/oksasatya/rentivu/internal/domain/entity"
	repo "github.com/oksasatya/rentivu/internal/domain/repository"
)

// RentalPageSize is the number of listings per search page.
const RentalPageSize = 9

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// RentalFilter mirrors the listing page query. Zero values disable a filter.
type RentalFilter struct {
	Query    string
	Type     entity.RentalType
	PriceMax *float64
	Location string
	Sort     string
	Page     int
}

type RentalPage struct {
	Items      []entity.Rental `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
	Total      int             `json:"total"`
}

type RentalService struct {
	Catalog repo.RentalCatalog
}

func NewRentalService(catalog repo.RentalCatalog) *RentalService {
	return &RentalService{Catalog: catalog}
}

// Search filters, sorts and paginates the catalog. The page is clamped to [1, TotalPages].
func (s *RentalService) Search(ctx context.Context, f RentalFilter) (RentalPage, error) {
	all, err := s.Catalog.All(ctx)
	if err != nil {
		return RentalPage{}, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	matched := make([]entity.Rental, 0, len(all))
	for _, r := range all {
		if q != "" && !matchesQuery(r, q) {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.PriceMax != nil && r.Price > *f.PriceMax {
			continue
		}
		if f.Location != "" && r.Location.City != f.Location {
			continue
		}
		matched = append(matched, r)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}

	total := len(matched)
	totalPages := (total + RentalPageSize - 1) / RentalPageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * RentalPageSize
	end := start + RentalPageSize
	if end > total {
		end = total
	}

	return RentalPage{
		Items:      matched[start:end],
		Page:       page,
		PageSize:   RentalPageSize,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

func (s *RentalService) Get(ctx context.Context, id string) (entity.Rental, error) {
	all, err := s.Catalog.All(ctx)
	if err != nil {
		return entity.Rental{}, err
	}
	for _, r := range all {
		if r.ID == id {
			return r, nil
		}
	}
	return entity.Rental{}, ErrRentalNotFound
}

// Cities lists the distinct listing cities, sorted.
func (s *RentalService) Cities(ctx context.Context) ([]string, error) {
	all, err := s.Catalog.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := make([]string, 0)
	for _, r := range all {
		if !seen[r.Location.City] {
			seen[r.Location.City] = true
			out = append(out, r.Location.City)
		}
	}
	sort.Strings(out)
	return out, nil
}

func matchesQuery(r entity.Rental, q string) bool {
	for _, field := range []string{r.Name, r.Description, r.Location.City, r.Location.Address} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
