package persistence

import (
	"strings"

	"github.com/sisl/eshop/internal/domain/shared"
	"gorm.io/gorm"
)

// applyPagination applies whitelisted ordering plus limit and offset
func applyPagination(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField, defaultDir string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := defaultDir
	if filter.OrderDir != "" {
		dir = ValidateSortOrder(filter.OrderDir)
	}
	query = query.Order(field + " " + dir)

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}
	return query
}

// likePattern builds a lower-cased contains pattern with LIKE wildcards escaped
func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + replacer.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// containsClause returns a case-insensitive LIKE condition on column for use with likePattern
func containsClause(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '\\'"
}
