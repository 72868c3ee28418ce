package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
)

type transactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *transactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) ListTransactions(ctx context.Context, userID int64, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	where, args := buildTransactionFilterClause(filter, "", 2)
	args = append([]interface{}{userID}, args...)

	query := `
		SELECT id, user_id, date, amount, kind, category, description
		FROM transactions
		WHERE user_id = $1` + where + `
		ORDER BY date DESC, id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	// Newest rows are selected so LIMIT keeps the recent tail, then flipped.
	query = `SELECT * FROM (` + query + `) recent ORDER BY date ASC, id ASC`

	var txns []domain.Transaction
	if err := sqlx.SelectContext(ctx, r.db, &txns, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

const insertTransaction = `
	INSERT INTO transactions (user_id, date, amount, kind, category, description)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
`

func (r *transactionRepository) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	err := r.db.QueryRowxContext(ctx, insertTransaction,
		txn.UserID, txn.Date, txn.Amount, txn.Kind, txn.Category, txn.Description,
	).Scan(&txn.ID)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// CreateTransactions inserts a statement in one database transaction.
func (r *transactionRepository) CreateTransactions(ctx context.Context, userID int64, txns []domain.Transaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, insertTransaction)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i := range txns {
			t := &txns[i]
			t.UserID = userID
			if err := stmt.QueryRowxContext(ctx, userID, t.Date, t.Amount, t.Kind, t.Category, t.Description).Scan(&t.ID); err != nil {
				return fmt.Errorf("failed to insert transaction %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(txns), nil
}

func (r *transactionRepository) ExpenseBreakdown(ctx context.Context, userID int64) ([]domain.ExpenseCategory, error) {
	query := `
		SELECT COALESCE(NULLIF(category, ''), 'Uncategorized') AS category, SUM(amount) AS total
		FROM transactions
		WHERE user_id = $1 AND kind = $2
		GROUP BY 1
		ORDER BY total DESC
	`

	var breakdown []domain.ExpenseCategory
	if err := sqlx.SelectContext(ctx, r.db, &breakdown, query, userID, domain.KindDebit); err != nil {
		return nil, fmt.Errorf("failed to get expense breakdown: %w", err)
	}
	return breakdown, nil
}
