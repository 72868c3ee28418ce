package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

type agentLogRepository struct {
	db *DB
}

func NewAgentLogRepository(db *DB) *agentLogRepository {
	return &agentLogRepository{db: db}
}

func (r *agentLogRepository) CreateAgentLog(ctx context.Context, entry *domain.AgentLog) error {
	query := `
		INSERT INTO agent_logs (user_id, agent_name, action, result, severity, extra_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, timestamp
	`
	err := r.db.QueryRowxContext(ctx, query,
		entry.UserID, entry.AgentName, entry.Action, entry.Result, entry.Severity, entry.ExtraData,
	).Scan(&entry.ID, &entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert agent log: %w", err)
	}
	return nil
}

func (r *agentLogRepository) ListAgentLogs(ctx context.Context, userID *int64, limit int) ([]domain.AgentLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `
		SELECT id, user_id, timestamp, agent_name, action, result, severity, extra_data
		FROM agent_logs
		WHERE ($1::BIGINT IS NULL OR user_id = $1)
		ORDER BY timestamp DESC
		LIMIT $2
	`

	var logs []domain.AgentLog
	if err := sqlx.SelectContext(ctx, r.db, &logs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list agent logs: %w", err)
	}
	return logs, nil
}
