package params

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// DefaultLimit is the number of reviews shown per page.
const DefaultLimit = 10

var ErrInvalidPage = errors.New("page must be an integer")

// URL: /reviews?page=2
// → ParsePage() → Pagination{Limit:10, Page:2, Offset:10}
// → collection[10:20]
// → ComputeMeta(total) → fills TotalPages, HasNext, etc.
// Pagination holds pagination info and computed metadata.
type Pagination struct {
	Limit      int  `json:"limit"`       // items per page
	Offset     int  `json:"offset"`      // index of the first item on the page
	Page       int  `json:"page"`        // Current Page number
	Total      int  `json:"total"`       //Total items in the collection
	TotalPages int  `json:"total_pages"` //Total pages available
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// New builds a Pagination for page with the given limit. A non-positive limit
// falls back to DefaultLimit.
func New(page, limit int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Pagination{
		Limit:  limit,
		Page:   page,
		Offset: (page - 1) * limit,
	}
}

// ParsePage reads ?page=... . A missing value means page 1. Out-of-range
// values are kept as given so the caller can reject them with InRange.
func ParsePage(q url.Values) (Pagination, error) {
	pageStr := strings.TrimSpace(q.Get("page"))
	if pageStr == "" {
		return New(1, DefaultLimit), nil
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return Pagination{}, ErrInvalidPage
	}
	return New(page, DefaultLimit), nil
}

// ComputeMeta updates pagination after the total is known.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.Limit) < total
}

// InRange reports whether Page lies in [1, TotalPages]. Page 1 of an empty
// collection is allowed so an empty list can still be rendered.
func (p Pagination) InRange() bool {
	if p.Page == 1 && p.Total == 0 {
		return true
	}
	return p.Page >= 1 && p.Page <= p.TotalPages
}

// Bounds returns the [lo, hi) slice indexes of the page, clipped to Total.
func (p Pagination) Bounds() (int, int) {
	lo := min(max(p.Offset, 0), p.Total)
	hi := min(max(p.Offset+p.Limit, 0), p.Total)
	return lo, hi
}
