package cars

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/internal/geo"
	"github.com/richxcame/carmarket/pkg/config"
	"github.com/richxcame/carmarket/pkg/pagination"
)

// SortKey is a column search results can be ordered by
type SortKey string

const (
	SortCreatedAt SortKey = "created_at"
	SortPrice     SortKey = "price"
	SortYear      SortKey = "year"
	SortMileage   SortKey = "mileage"
	SortViews     SortKey = "views_count"
	// SortDistance is only used for geographic searches
	SortDistance SortKey = "distance"
)

// IsValid reports whether k is a sortable column
func (k SortKey) IsValid() bool {
	switch k {
	case SortCreatedAt, SortPrice, SortYear, SortMileage, SortViews:
		return true
	}
	return false
}

// SearchFilters is a listing search. Nil fields are not applied.
type SearchFilters struct {
	Query      *string
	BrandID    *uuid.UUID
	ModelID    *uuid.UUID
	CategoryID *uuid.UUID
	CityID     *uuid.UUID

	MinPrice   *float64
	MaxPrice   *float64
	MinYear    *int
	MaxYear    *int
	MinMileage *int
	MaxMileage *int

	FuelType     *FuelType
	Transmission *Transmission
	Condition    *Condition

	Latitude  *float64
	Longitude *float64
	RadiusKm  *float64

	Negotiable         *bool
	FinancingAvailable *bool
	TradeInAccepted    *bool
	FeaturedOnly       bool

	SortBy   SortKey
	SortDesc bool
	Page     int
	PageSize int
}

// Normalize drops filters that cannot be applied and fills in paging and
// sort defaults. Invalid input never causes an error.
func (f *SearchFilters) Normalize(cfg config.SearchConfig) {
	if f.Query != nil && *f.Query == "" {
		f.Query = nil
	}
	f.MinPrice, f.MaxPrice = finite(f.MinPrice), finite(f.MaxPrice)
	f.Latitude, f.Longitude, f.RadiusKm = finite(f.Latitude), finite(f.Longitude), finite(f.RadiusKm)
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		f.MinPrice, f.MaxPrice = nil, nil
	}
	if f.MinYear != nil && f.MaxYear != nil && *f.MinYear > *f.MaxYear {
		f.MinYear, f.MaxYear = nil, nil
	}
	if f.MinMileage != nil && f.MaxMileage != nil && *f.MinMileage > *f.MaxMileage {
		f.MinMileage, f.MaxMileage = nil, nil
	}

	if f.FuelType != nil && !f.FuelType.IsValid() {
		f.FuelType = nil
	}
	if f.Transmission != nil && !f.Transmission.IsValid() {
		f.Transmission = nil
	}
	if f.Condition != nil && !f.Condition.IsValid() {
		f.Condition = nil
	}

	if f.Latitude == nil || f.Longitude == nil || f.RadiusKm == nil ||
		!geo.ValidCoordinates(*f.Latitude, *f.Longitude) || *f.RadiusKm <= 0 {
		f.Latitude, f.Longitude, f.RadiusKm = nil, nil, nil
	} else if *f.RadiusKm > MaxRadiusKm {
		r := MaxRadiusKm
		f.RadiusKm = &r
	}

	switch {
	case f.SortBy.IsValid():
	case f.SortBy == SortDistance && f.IsGeo():
	case f.IsGeo() && f.SortBy == "":
		f.SortBy, f.SortDesc = SortDistance, false
	default:
		f.SortBy, f.SortDesc = SortCreatedAt, true
	}

	page := pagination.NormalizePage(f.Page, f.PageSize, cfg.DefaultPageSize, cfg.MaxPageSize)
	f.Page, f.PageSize = page.Number, page.Size
}

// finite drops NaN and infinite values
func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// IsGeo reports whether the search is restricted to a radius
func (f *SearchFilters) IsGeo() bool {
	return f.Latitude != nil && f.Longitude != nil && f.RadiusKm != nil
}

// Offset returns the row offset of the requested page
func (f *SearchFilters) Offset() int {
	return pagination.Page{Number: f.Page, Size: f.PageSize}.Offset()
}

// SearchResult is one page of listings
type SearchResult struct {
	Items      []*Car `json:"items"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

func newSearchResult(items []*Car, total int64, f *SearchFilters) *SearchResult {
	if items == nil {
		items = []*Car{}
	}
	return &SearchResult{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: pagination.TotalPages(total, f.PageSize),
	}
}

// filterByRadius keeps the candidates within the search radius, sets their
// distance and, for distance sorts, orders them nearest first
func filterByRadius(candidates []*Car, f *SearchFilters) []*Car {
	lat, lon, radius := *f.Latitude, *f.Longitude, *f.RadiusKm

	within := make([]*Car, 0, len(candidates))
	for _, c := range candidates {
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		d := geo.Haversine(lat, lon, *c.Latitude, *c.Longitude)
		if d > radius {
			continue
		}
		rounded := geo.RoundKm(d)
		c.DistanceKm = &rounded
		within = append(within, c)
	}

	if f.SortBy == SortDistance {
		sort.SliceStable(within, func(i, j int) bool {
			return *within[i].DistanceKm < *within[j].DistanceKm
		})
	}
	return within
}

// pageOf slices one page out of an in-memory result
func pageOf(items []*Car, f *SearchFilters) []*Car {
	start := f.Offset()
	if start < 0 || start >= len(items) {
		return []*Car{}
	}
	end := min(start+f.PageSize, len(items))
	return items[start:end]
}
