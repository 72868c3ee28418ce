package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/statement"
)

var (
	ErrFolderNotFound  = errors.New("drive folder not found")
	ErrUnsupportedFile = errors.New("unsupported statement file")
)

// Importer stores parsed statement rows for a user.
type Importer interface {
	ImportTransactions(ctx context.Context, userID int64, txns []domain.Transaction) (int, error)
}

// IngestResult reports one imported file.
type IngestResult struct {
	FileID   string `json:"file_id"`
	Name     string `json:"name"`
	Rows     int    `json:"rows"`
	Inserted int    `json:"inserted"`
	Error    string `json:"error,omitempty"`
}

type IngestService struct {
	source   Source
	importer Importer
}

func NewIngestService(source Source, importer Importer) *IngestService {
	return &IngestService{source: source, importer: importer}
}

// Supported reports whether name is a statement format the parser reads.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// IngestFile downloads one statement and records its transactions for userID.
func (s *IngestService) IngestFile(ctx context.Context, userID int64, file *File) (IngestResult, error) {
	result := IngestResult{FileID: file.ID, Name: file.Name}
	if !Supported(file.Name) {
		return result, fmt.Errorf("%s: %w", file.Name, ErrUnsupportedFile)
	}

	var buf bytes.Buffer
	if err := s.source.DownloadFile(ctx, file.ID, &buf); err != nil {
		return result, err
	}

	table, err := statement.Read(&buf, file.Name)
	if err != nil {
		return result, fmt.Errorf("%s: %w", file.Name, err)
	}
	txns, err := statement.Transactions(table)
	if err != nil {
		return result, fmt.Errorf("%s: %w", file.Name, err)
	}
	result.Rows = len(txns)

	inserted, err := s.importer.ImportTransactions(ctx, userID, txns)
	if err != nil {
		return result, fmt.Errorf("%s: %w", file.Name, err)
	}
	result.Inserted = inserted

	log.Info().
		Int64("user_id", userID).
		Str("file", file.Name).
		Int("rows", result.Rows).
		Int("inserted", inserted).
		Msg("Statement ingested")
	return result, nil
}
