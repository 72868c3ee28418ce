package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/events"
	"github.com/spivot-hq/spivot/backend-go/internal/ocr"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
	"github.com/spivot-hq/spivot/backend-go/internal/storage"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

const (
	// MaxDocumentSize bounds uploads accepted for extraction.
	MaxDocumentSize = 20 << 20

	defaultDocumentLimit = 50
)

type DocumentService struct {
	docs      repository.DocumentRepository
	store     storage.ObjectStorage
	extractor ocr.Extractor
	agentLogs *AgentLogService
	events    events.Publisher
	metrics   *metrics.Recorder
	now       func() time.Time
}

func NewDocumentService(
	docs repository.DocumentRepository,
	store storage.ObjectStorage,
	extractor ocr.Extractor,
	agentLogs *AgentLogService,
	publisher events.Publisher,
	rec *metrics.Recorder,
) *DocumentService {
	if extractor == nil {
		extractor = ocr.NewDisabledExtractor()
	}
	if publisher == nil {
		publisher = events.NewLogPublisher(rec)
	}
	return &DocumentService{
		docs:      docs,
		store:     store,
		extractor: extractor,
		agentLogs: agentLogs,
		events:    publisher,
		metrics:   rec,
		now:       time.Now,
	}
}

// Upload stores the file, runs extraction and persists the outcome. An
// extraction failure is recorded on the document rather than returned.
func (s *DocumentService) Upload(ctx context.Context, userID int64, fileName string, data []byte) (*domain.Document, error) {
	fileName = strings.TrimSpace(fileName)
	switch {
	case fileName == "":
		return nil, domain.InvalidInput("file", "name is required")
	case len(data) == 0:
		return nil, domain.InvalidInput("file", "is empty")
	case len(data) > MaxDocumentSize:
		return nil, domain.InvalidInput("file", "exceeds %d bytes", MaxDocumentSize)
	}

	key := storage.NewObjectKey(userID, fileName)
	if err := s.store.UploadObject(ctx, key, data); err != nil {
		return nil, fmt.Errorf("store document %s: %w", fileName, err)
	}

	doc := &domain.Document{
		UserID:    userID,
		ObjectKey: key,
		FileName:  fileName,
		Status:    domain.DocumentProcessing,
	}
	if err := s.docs.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.extract(ctx, doc, data)

	if err := s.docs.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	s.metrics.RecordDocument(doc.Status.String())
	s.announce(ctx, doc)
	return doc, nil
}

func (s *DocumentService) extract(ctx context.Context, doc *domain.Document, data []byte) {
	processedAt := s.now().UTC()
	doc.ProcessedAt = &processedAt

	extracted, err := s.extractor.Extract(ctx, doc.FileName, data)
	if err != nil {
		doc.Status = domain.DocumentFailed
		level := log.Error()
		if errors.Is(err, ocr.ErrDisabled) {
			level = log.Warn()
		}
		level.Err(err).Int64("document_id", doc.ID).Str("file_name", doc.FileName).Msg("document extraction failed")
		return
	}

	raw, err := json.Marshal(extracted)
	if err != nil {
		doc.Status = domain.DocumentFailed
		log.Error().Err(err).Int64("document_id", doc.ID).Msg("encode extracted document failed")
		return
	}

	docType := extracted.DocumentType
	doc.DocumentType = &docType
	doc.ExtractedJSON = raw
	doc.Status = domain.DocumentCompleted
}

func (s *DocumentService) announce(ctx context.Context, doc *domain.Document) {
	severity := domain.SeverityInfo
	result := fmt.Sprintf("Processed %s", doc.FileName)
	if doc.Status == domain.DocumentFailed {
		severity = domain.SeverityWarning
		result = fmt.Sprintf("Could not extract %s", doc.FileName)
	} else if doc.DocumentType != nil {
		result = fmt.Sprintf("Processed %s as %s", doc.FileName, *doc.DocumentType)
	}

	userID := doc.UserID
	if s.agentLogs != nil {
		entry := &domain.AgentLog{
			UserID:    &userID,
			AgentName: domain.AgentVisualEye,
			Action:    "Extracted document",
			Result:    &result,
			Severity:  severity,
		}
		if err := s.agentLogs.Record(ctx, entry); err != nil {
			log.Warn().Err(err).Int64("document_id", doc.ID).Msg("documents: write agent log failed")
		}
	}

	ev, err := events.NewEvent(events.TypeDocumentParsed, userID, map[string]any{
		"document_id": doc.ID,
		"status":      doc.Status.String(),
	})
	if err == nil {
		ev.AgentName = domain.AgentVisualEye
		ev.Severity = severity.String()
		err = s.events.Publish(ctx, ev)
	}
	if err != nil {
		log.Warn().Err(err).Int64("document_id", doc.ID).Msg("documents: publish event failed")
	}
}

func (s *DocumentService) Get(ctx context.Context, userID, id int64) (*domain.Document, error) {
	return s.docs.GetDocument(ctx, userID, id)
}

func (s *DocumentService) List(ctx context.Context, userID int64, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = defaultDocumentLimit
	}
	docs, err := s.docs.ListDocuments(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = make([]domain.Document, 0)
	}
	return docs, nil
}
