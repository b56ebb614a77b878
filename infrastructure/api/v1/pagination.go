package v1

import (
	"net/http"
	"strconv"

	"github.com/reviewfunnel/funnel/application/service"
	"github.com/reviewfunnel/funnel/infrastructure/api/jsonapi"
)

// PaginationParams holds pagination parameters parsed from query strings.
type PaginationParams struct {
	page     int
	pageSize int
}

// NewPaginationParams creates pagination params with defaults.
func NewPaginationParams() PaginationParams {
	return PaginationParams{
		page:     1,
		pageSize: service.DefaultPageSize,
	}
}

// ParsePagination parses pagination parameters from an HTTP request.
// Default: page=1, page_size=20
// Max page_size: 100
func ParsePagination(r *http.Request) PaginationParams {
	params := NewPaginationParams()

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page >= 1 {
			params.page = page
		}
	}

	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size >= 1 {
			params.pageSize = min(size, service.MaxPageSize)
		}
	}

	return params
}

// Page returns the page number (1-indexed).
func (p PaginationParams) Page() int { return p.page }

// PageSize returns the page size.
func (p PaginationParams) PageSize() int { return p.pageSize }

// Offset returns the offset for database queries.
func (p PaginationParams) Offset() int {
	return (p.page - 1) * p.pageSize
}

// PageParams converts to the service layer's paging.
func (p PaginationParams) PageParams() service.PageParams {
	return service.PageParams{Limit: p.pageSize, Offset: p.Offset()}
}

// paged builds a list document with paging meta and links that keep the
// request's other query parameters.
func paged(r *http.Request, params PaginationParams, resources []*jsonapi.Resource, total int64) *jsonapi.Document {
	page := jsonapi.Page{Number: params.Page(), Size: params.PageSize(), Total: total}
	return jsonapi.NewPageResponse(resources, page, func(n int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(n))
		q.Set("page_size", strconv.Itoa(params.PageSize()))
		return r.URL.Path + "?" + q.Encode()
	})
}
