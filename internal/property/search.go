package property

import (
	"time"

	"maklarsystem/internal/validation/schema"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Search is a listing query. Zero pointers are unset filters.
type Search struct {
	Query         *string  `json:"query,omitempty"`
	PropertyType  *string  `json:"propertyType,omitempty"`
	Status        *string  `json:"status,omitempty"`
	City          *string  `json:"city,omitempty"`
	Municipality  *string  `json:"municipality,omitempty"`
	MinPrice      *int64   `json:"minPrice,omitempty"`
	MaxPrice      *int64   `json:"maxPrice,omitempty"`
	MinLivingArea *int     `json:"minLivingArea,omitempty"`
	MaxLivingArea *int     `json:"maxLivingArea,omitempty"`
	MinRooms      *float64 `json:"minRooms,omitempty"`
	MaxRooms      *float64 `json:"maxRooms,omitempty"`
	MinBuildYear  *int     `json:"minBuildYear,omitempty"`
	MaxBuildYear  *int     `json:"maxBuildYear,omitempty"`
	SortBy        *string  `json:"sortBy,omitempty"`
	SortOrder     *string  `json:"sortOrder,omitempty"`
	Page          *int     `json:"page,omitempty"`
	Limit         *int     `json:"limit,omitempty"`
}

// ValidateSearch checks q and returns a copy with sort and paging defaults
// filled in. Range lower bounds may not exceed upper bounds; the failure is
// attributed to the lower bound.
func ValidateSearch(q Search) (*Search, error) {
	v := schema.New(schema.Update, time.Time{})
	schema.Check(v, "query", schema.Optional, q.Query, schema.MaxLen(100))
	schema.Check(v, "propertyType", schema.Optional, q.PropertyType, schema.OneOf(strs(typeValues)...))
	schema.Check(v, "status", schema.Optional, q.Status, schema.OneOf(strs(statusValues)...))
	schema.Check(v, "city", schema.Optional, q.City, schema.MaxLen(100))
	schema.Check(v, "municipality", schema.Optional, q.Municipality, schema.MaxLen(100))
	schema.Check(v, "minPrice", schema.Optional, q.MinPrice, schema.Min[int64](0))
	schema.Check(v, "maxPrice", schema.Optional, q.MaxPrice, schema.Min[int64](0))
	schema.Check(v, "minLivingArea", schema.Optional, q.MinLivingArea, schema.Min(0))
	schema.Check(v, "maxLivingArea", schema.Optional, q.MaxLivingArea, schema.Min(0))
	schema.Check(v, "minRooms", schema.Optional, q.MinRooms, schema.Min(0.5), schema.MultipleOf(0.5))
	schema.Check(v, "maxRooms", schema.Optional, q.MaxRooms, schema.Min(0.5), schema.MultipleOf(0.5))
	schema.Check(v, "minBuildYear", schema.Optional, q.MinBuildYear)
	schema.Check(v, "maxBuildYear", schema.Optional, q.MaxBuildYear)
	schema.Check(v, "sortBy", schema.Optional, q.SortBy, schema.OneOf("price", "date", "area", "rooms"))
	schema.Check(v, "sortOrder", schema.Optional, q.SortOrder, schema.OneOf("asc", "desc"))
	schema.Check(v, "page", schema.Optional, q.Page, schema.Min(1))
	schema.Check(v, "limit", schema.Optional, q.Limit, schema.Range(1, MaxLimit))

	v.Refine("minPrice", []string{"minPrice", "maxPrice"},
		func() bool { return *q.MinPrice <= *q.MaxPrice }, "cannot exceed maxPrice")
	v.Refine("minLivingArea", []string{"minLivingArea", "maxLivingArea"},
		func() bool { return *q.MinLivingArea <= *q.MaxLivingArea }, "cannot exceed maxLivingArea")
	v.Refine("minRooms", []string{"minRooms", "maxRooms"},
		func() bool { return *q.MinRooms <= *q.MaxRooms }, "cannot exceed maxRooms")
	v.Refine("minBuildYear", []string{"minBuildYear", "maxBuildYear"},
		func() bool { return *q.MinBuildYear <= *q.MaxBuildYear }, "cannot exceed maxBuildYear")

	if err := v.Err(); err != nil {
		return nil, err
	}

	out := q
	if out.SortBy == nil {
		s := "date"
		out.SortBy = &s
	}
	if out.SortOrder == nil {
		s := "desc"
		out.SortOrder = &s
	}
	if out.Page == nil {
		n := DefaultPage
		out.Page = &n
	}
	if out.Limit == nil {
		n := DefaultLimit
		out.Limit = &n
	}
	return &out, nil
}
