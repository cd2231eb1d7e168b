package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type AuditLog struct {
	ID           string
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  []byte
	AfterState   []byte
	Status       string
	ErrorMessage string
	CreatedAt    pgtype.Timestamptz
}

const createAuditLog = `
INSERT INTO audit_logs (id, actor, action, resource_type, resource_id, request_id,
	before_state, after_state, status, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateAuditLogParams = AuditLog

func (q *Queries) CreateAuditLog(ctx context.Context, arg CreateAuditLogParams) error {
	_, err := q.db.Exec(ctx, createAuditLog,
		arg.ID,
		arg.Actor,
		arg.Action,
		arg.ResourceType,
		arg.ResourceID,
		arg.RequestID,
		arg.BeforeState,
		arg.AfterState,
		arg.Status,
		arg.ErrorMessage,
		arg.CreatedAt,
	)
	return err
}

const getAuditLogsByResource = `
SELECT id, actor, action, resource_type, resource_id, request_id,
	before_state, after_state, status, error_message, created_at
FROM audit_logs
WHERE resource_type = $1 AND resource_id = $2
ORDER BY created_at, id
`

type GetAuditLogsByResourceParams struct {
	ResourceType string
	ResourceID   string
}

func (q *Queries) GetAuditLogsByResource(ctx context.Context, arg GetAuditLogsByResourceParams) ([]AuditLog, error) {
	rows, err := q.db.Query(ctx, getAuditLogsByResource, arg.ResourceType, arg.ResourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []AuditLog
	for rows.Next() {
		var i AuditLog
		if err := rows.Scan(
			&i.ID,
			&i.Actor,
			&i.Action,
			&i.ResourceType,
			&i.ResourceID,
			&i.RequestID,
			&i.BeforeState,
			&i.AfterState,
			&i.Status,
			&i.ErrorMessage,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
