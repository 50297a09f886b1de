package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/rentivu/internal/domain/entity"
)

func sampleRentals() []entity.Rental {
	return []entity.Rental{
		{ID: "a", Name: "River Loft", Description: "Near the Danube", Price: 500, Type: entity.RentalApartment,
			Location: entity.Location{City: "Beograd", Address: "Cara Dušana 1"}},
		{ID: "b", Name: "Garden House", Description: "Big garden", Price: 1200, Type: entity.RentalHouse,
			Location: entity.Location{City: "Novi Sad", Address: "Liman 2"}},
		{ID: "c", Name: "Desk Space", Description: "Quiet office", Price: 700, Type: entity.RentalOffice,
			Location: entity.Location{City: "Beograd", Address: "Knez Mihailova 3"}},
		{ID: "d", Name: "Tiny Flat", Description: "Cheap and cosy", Price: 300, Type: entity.RentalApartment,
			Location: entity.Location{City: "Niš", Address: "Obrenovićeva 4"}},
	}
}

func ids(list []entity.Rental) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.ID)
	}
	return out
}

func TestRentalService_SearchFilters(t *testing.T) {
	s := NewRentalService(stubCatalog{rentals: sampleRentals()})
	ctx := context.Background()
	priceMax := 700.0

	tests := []struct {
		name   string
		filter RentalFilter
		want   []string
	}{
		{"no filter keeps catalog order", RentalFilter{}, []string{"a", "b", "c", "d"}},
		{"query matches name", RentalFilter{Query: "LOFT"}, []string{"a"}},
		{"query matches description", RentalFilter{Query: "garden"}, []string{"b"}},
		{"query matches city", RentalFilter{Query: "beo"}, []string{"a", "c"}},
		{"query matches address", RentalFilter{Query: "mihailova"}, []string{"c"}},
		{"type", RentalFilter{Type: entity.RentalApartment}, []string{"a", "d"}},
		{"price max is inclusive", RentalFilter{PriceMax: &priceMax}, []string{"a", "c", "d"}},
		{"location is exact city", RentalFilter{Location: "Beograd"}, []string{"a", "c"}},
		{"location does not match prefix", RentalFilter{Location: "Beo"}, []string{}},
		{"sort asc", RentalFilter{Sort: SortPriceAsc}, []string{"d", "a", "c", "b"}},
		{"sort desc", RentalFilter{Sort: SortPriceDesc}, []string{"b", "c", "a", "d"}},
		{"unknown sort is ignored", RentalFilter{Sort: "name"}, []string{"a", "b", "c", "d"}},
		{"combined", RentalFilter{Location: "Beograd", Sort: SortPriceDesc, PriceMax: &priceMax}, []string{"c", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Search(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(page.Items))
			assert.Equal(t, len(tt.want), page.Total)
			assert.Equal(t, 1, page.TotalPages)
		})
	}
}

func TestRentalService_SearchPagination(t *testing.T) {
	var rentals []entity.Rental
	for i := 0; i < 20; i++ {
		rentals = append(rentals, entity.Rental{ID: fmt.Sprintf("r%d", i), Price: float64(100 + (i*37)%11)})
	}
	s := NewRentalService(stubCatalog{rentals: rentals})
	ctx := context.Background()

	first, err := s.Search(ctx, RentalFilter{Page: 1})
	require.NoError(t, err)
	assert.Len(t, first.Items, RentalPageSize)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 20, first.Total)

	last, err := s.Search(ctx, RentalFilter{Page: 3})
	require.NoError(t, err)
	assert.Len(t, last.Items, 2)

	for _, p := range []int{-4, 0} {
		page, err := s.Search(ctx, RentalFilter{Page: p})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
	}
	beyond, err := s.Search(ctx, RentalFilter{Page: 99})
	require.NoError(t, err)
	assert.Equal(t, 3, beyond.Page)
	assert.Len(t, beyond.Items, 2)

	sorted, err := s.Search(ctx, RentalFilter{Sort: SortPriceAsc, Page: 2})
	require.NoError(t, err)
	for i := 1; i < len(sorted.Items); i++ {
		assert.LessOrEqual(t, sorted.Items[i-1].Price, sorted.Items[i].Price)
	}
}

func TestRentalService_SearchEmptyResult(t *testing.T) {
	s := NewRentalService(stubCatalog{rentals: sampleRentals()})
	page, err := s.Search(context.Background(), RentalFilter{Query: "castle", Page: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.Total)
}

func TestRentalService_Get(t *testing.T) {
	s := NewRentalService(stubCatalog{rentals: sampleRentals()})

	r, err := s.Get(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, "Desk Space", r.Name)

	_, err = s.Get(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrRentalNotFound)
}

func TestRentalService_Cities(t *testing.T) {
	s := NewRentalService(stubCatalog{rentals: sampleRentals()})
	cities, err := s.Cities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Beograd", "Niš", "Novi Sad"}, cities)
}
