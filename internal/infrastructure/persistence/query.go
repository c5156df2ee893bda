package persistence

import (
	"strings"

	"github.com/rentalcore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// sortDirection accepts asc in any case; anything else sorts newest first
func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// sortColumn returns field when the whitelist allows it, else fallback.
// Column names go into ORDER BY verbatim so nothing else gets through.
func sortColumn(field string, allowed map[string]bool, fallback string) string {
	if field = strings.TrimSpace(field); allowed[field] {
		return field
	}
	return fallback
}

// ItemSortFields contains allowed sort fields for items
var ItemSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"category":   true,
	"brand":      true,
	"status":     true,
}

// UnitSortFields contains allowed sort fields for inventory units
var UnitSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"status":         true,
	"condition":      true,
	"rental_count":   true,
	"last_rented_at": true,
}

// StockLevelSortFields contains allowed sort fields for stock levels
var StockLevelSortFields = map[string]bool{
	"created_at":         true,
	"updated_at":         true,
	"quantity_on_hand":   true,
	"quantity_available": true,
	"reorder_point":      true,
}

// TransactionSortFields contains allowed sort fields for transaction headers
var TransactionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"number":           true,
	"transaction_date": true,
	"status":           true,
	"total_amount":     true,
	"rental_end_date":  true,
}

// ReturnSortFields contains allowed sort fields for rental returns
var ReturnSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"number":              true,
	"return_date":         true,
	"status":              true,
	"total_refund_amount": true,
}

// paginate applies a whitelisted ordering and the page window of the filter
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	query = query.Order(sortColumn(filter.OrderBy, allowed, defaultField) + " " + sortDirection(filter.OrderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

// applyEquals adds an equality condition for every filter key present in columns
func applyEquals(query *gorm.DB, filter shared.Filter, columns map[string]string) *gorm.DB {
	for key, column := range columns {
		if value, ok := filter.Filters[key]; ok {
			query = query.Where(column+" = ?", value)
		}
	}
	return query
}
