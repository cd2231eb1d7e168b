package queries

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Transaction struct {
	ID                string
	SenderAccountID   string
	ReceiverAccountID string
	Amount            pgtype.Numeric
	Currency          string
	Status            string
	FailureReason     string
	Reference         string
	SettlementXML     string
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

const transactionColumns = `id, sender_account_id, receiver_account_id, amount, currency, status,
failure_reason, reference, settlement_xml, created_at, updated_at`

const createTransaction = `
INSERT INTO transactions (id, sender_account_id, receiver_account_id, amount, currency, status,
	failure_reason, reference, settlement_xml, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateTransactionParams = Transaction

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.Exec(ctx, createTransaction,
		arg.ID,
		arg.SenderAccountID,
		arg.ReceiverAccountID,
		arg.Amount,
		arg.Currency,
		arg.Status,
		arg.FailureReason,
		arg.Reference,
		arg.SettlementXML,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getTransactionByID = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

func (q *Queries) GetTransactionByID(ctx context.Context, id string) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, getTransactionByID, id))
}

const getTransactionByIDForUpdate = getTransactionByID + ` FOR UPDATE`

func (q *Queries) GetTransactionByIDForUpdate(ctx context.Context, id string) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, getTransactionByIDForUpdate, id))
}

const updateTransaction = `
UPDATE transactions
SET status = $2, failure_reason = $3, updated_at = $4
WHERE id = $1
`

type UpdateTransactionParams struct {
	ID            string
	Status        string
	FailureReason string
	UpdatedAt     pgtype.Timestamptz
}

// UpdateTransaction returns the number of rows changed.
func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateTransaction, arg.ID, arg.Status, arg.FailureReason, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listTransactionsByAccount = `SELECT ` + transactionColumns + `
FROM transactions
WHERE sender_account_id = $1 OR receiver_account_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

type ListTransactionsByAccountParams struct {
	AccountID string
	Limit     int32
	Offset    int32
}

func (q *Queries) ListTransactionsByAccount(ctx context.Context, arg ListTransactionsByAccountParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsByAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.SenderAccountID,
		&i.ReceiverAccountID,
		&i.Amount,
		&i.Currency,
		&i.Status,
		&i.FailureReason,
		&i.Reference,
		&i.SettlementXML,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
