package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type Entry struct {
	ID                     string
	AccountID              string
	TransactionID          string
	Amount                 pgtype.Numeric
	AccountPreviousBalance pgtype.Numeric
	AccountCurrentBalance  pgtype.Numeric
	AccountVersion         int64
	CreatedAt              pgtype.Timestamptz
}

const createEntry = `
INSERT INTO entries (id, account_id, transaction_id, amount, account_previous_balance,
	account_current_balance, account_version, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateEntryParams = Entry

func (q *Queries) CreateEntry(ctx context.Context, arg CreateEntryParams) error {
	_, err := q.db.Exec(ctx, createEntry,
		arg.ID,
		arg.AccountID,
		arg.TransactionID,
		arg.Amount,
		arg.AccountPreviousBalance,
		arg.AccountCurrentBalance,
		arg.AccountVersion,
		arg.CreatedAt,
	)
	return err
}

const getEntriesByTransaction = `
SELECT id, account_id, transaction_id, amount, account_previous_balance,
	account_current_balance, account_version, created_at
FROM entries
WHERE transaction_id = $1
ORDER BY created_at, id
`

func (q *Queries) GetEntriesByTransaction(ctx context.Context, transactionID string) ([]Entry, error) {
	rows, err := q.db.Query(ctx, getEntriesByTransaction, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Entry
	for rows.Next() {
		var i Entry
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.TransactionID,
			&i.Amount,
			&i.AccountPreviousBalance,
			&i.AccountCurrentBalance,
			&i.AccountVersion,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// A completed transaction is unbalanced when its entries are missing or
// do not net to zero.
const checkLedgerConsistency = `
SELECT
	(SELECT COALESCE(SUM(amount), 0) FROM entries) AS total_entry_amount,
	(SELECT COUNT(*) FROM (
		SELECT t.id
		FROM transactions t
		LEFT JOIN entries e ON e.transaction_id = t.id
		WHERE t.status = 'completed'
		GROUP BY t.id
		HAVING COUNT(e.id) = 0 OR SUM(e.amount) <> 0
	) unbalanced) AS unbalanced_transactions
`

type CheckLedgerConsistencyRow struct {
	TotalEntryAmount       pgtype.Numeric
	UnbalancedTransactions int64
}

func (q *Queries) CheckLedgerConsistency(ctx context.Context) (CheckLedgerConsistencyRow, error) {
	row := q.db.QueryRow(ctx, checkLedgerConsistency)
	var i CheckLedgerConsistencyRow
	err := row.Scan(&i.TotalEntryAmount, &i.UnbalancedTransactions)
	return i, err
}
