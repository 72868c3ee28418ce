package postgres

import (
	"fmt"
	"strings"

	"github.com/spivot-hq/spivot/backend-go/internal/repository"
)

// buildTransactionFilterClause constructs the WHERE tail for transaction
// listings. Placeholders start at startIndex.
func buildTransactionFilterClause(filter repository.TransactionFilter, alias string, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if filter.Since != nil {
		clauses = append(clauses, fmt.Sprintf("%sdate >= $%d", alias, idx))
		args = append(args, *filter.Since)
		idx++
	}

	if filter.Kind.Valid() {
		clauses = append(clauses, fmt.Sprintf("%skind = $%d", alias, idx))
		args = append(args, filter.Kind)
		idx++
	}

	if category := strings.TrimSpace(filter.Category); category != "" {
		clauses = append(clauses, fmt.Sprintf("%scategory ILIKE $%d", alias, idx))
		args = append(args, category)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}
