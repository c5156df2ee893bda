package shared

import (
	domain "github.com/rentalcore/backend/internal/domain/shared"
)

// MaxPageSize caps list requests.
const MaxPageSize = 100

// PageFilter converts request paging fields into a repository filter,
// falling back to the defaults for zero values.
func PageFilter(page, pageSize int, orderBy, orderDir, search string) domain.Filter {
	f := domain.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = min(pageSize, MaxPageSize)
	}
	if orderBy != "" {
		f.OrderBy = orderBy
	}
	if orderDir == "asc" || orderDir == "desc" {
		f.OrderDir = orderDir
	}
	f.Search = search
	return f
}
