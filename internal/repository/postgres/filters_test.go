package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
)

func TestBuildTransactionFilterClause(t *testing.T) {
	clause, args := buildTransactionFilterClause(repository.TransactionFilter{}, "t.", 2)
	assert.Empty(t, clause)
	assert.Nil(t, args)

	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	clause, args = buildTransactionFilterClause(repository.TransactionFilter{
		Since:    &since,
		Kind:     domain.KindDebit,
		Category: " rent ",
	}, "t.", 2)

	assert.Equal(t, " AND t.date >= $2 AND t.kind = $3 AND t.category ILIKE $4", clause)
	assert.Equal(t, []interface{}{since, domain.KindDebit, "rent"}, args)
}

func TestMigrationsEmbedded(t *testing.T) {
	script, err := migrationFS.ReadFile("migrations/001_init.sql")
	assert.NoError(t, err)
	for _, table := range []string{"users", "transactions", "inventory", "vendor_payments", "documents", "agent_logs"} {
		assert.Contains(t, string(script), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
