package persistence

import (
	"github.com/ferreteria/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxPageSize caps list queries regardless of what the caller asks for
const maxPageSize = 500

// applyPaging adds whitelisted ordering and limit/offset to query.
// The id tie-breaker keeps pagination stable when sort keys collide.
func applyPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField, defaultDir string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := defaultDir
	if filter.OrderDir != "" {
		dir = ValidateSortOrder(filter.OrderDir)
	}
	query = query.Order(field + " " + dir)
	if field != "id" {
		query = query.Order("id " + dir)
	}

	if filter.PageSize > 0 {
		size := filter.PageSize
		if size > maxPageSize {
			size = maxPageSize
		}
		query = query.Limit(size).Offset(filter.Offset())
	}
	return query
}

// forUpdate is an exclusive row lock; sqlite ignores it
func forUpdate() clause.Expression {
	return clause.Locking{Strength: "UPDATE"}
}

// forShare is a shared row lock; sqlite ignores it
func forShare() clause.Expression {
	return clause.Locking{Strength: "SHARE"}
}
