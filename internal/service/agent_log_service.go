package service

import (
	"context"
	"time"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

const (
	defaultAgentLogLimit = 50
	maxAgentLogLimit     = 500
)

type AgentLogService struct {
	repo    repository.AgentLogRepository
	metrics *metrics.Recorder
	now     func() time.Time
}

func NewAgentLogService(repo repository.AgentLogRepository, rec *metrics.Recorder) *AgentLogService {
	return &AgentLogService{repo: repo, metrics: rec, now: time.Now}
}

// Record stamps and stores an entry.
func (s *AgentLogService) Record(ctx context.Context, entry *domain.AgentLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	if !entry.Severity.Valid() {
		entry.Severity = domain.SeverityInfo
	}
	if err := s.repo.CreateAgentLog(ctx, entry); err != nil {
		return err
	}
	s.metrics.RecordAlert(entry.AgentName, entry.Severity.String())
	return nil
}

// List returns recent entries, newest first. A nil userID lists all users.
func (s *AgentLogService) List(ctx context.Context, userID *int64, limit int) ([]domain.AgentLog, error) {
	if limit <= 0 {
		limit = defaultAgentLogLimit
	}
	limit = min(limit, maxAgentLogLimit)

	logs, err := s.repo.ListAgentLogs(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = make([]domain.AgentLog, 0)
	}
	return logs, nil
}
