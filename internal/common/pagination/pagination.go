// Package pagination provides skip/limit pagination for the admin API.
package pagination

import (
	"net/http"
	"strconv"
)

// DefaultLimit is the default number of items per request
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per request
const MaxLimit = 100

// Params represents skip/limit pagination parameters
type Params struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Response represents a paginated response envelope
type Response[T any] struct {
	Skip    int `json:"skip"`
	Limit   int `json:"limit"`
	Total   int `json:"total"`
	Results []T `json:"results"`
}

// ParseParams extracts skip/limit parameters from an HTTP request,
// clamping limit to [1, MaxLimit] and skip to non-negative.
func ParseParams(r *http.Request) Params {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Skip: skip, Limit: limit}
}

// NewResponse creates a new paginated response
func NewResponse[T any](results []T, params Params, total int) Response[T] {
	if results == nil {
		results = []T{}
	}
	return Response[T]{
		Skip:    params.Skip,
		Limit:   params.Limit,
		Total:   total,
		Results: results,
	}
}
