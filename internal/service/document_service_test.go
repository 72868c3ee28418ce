package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/ocr"
	"github.com/spivot-hq/spivot/backend-go/internal/storage"
)

type stubExtractor struct {
	doc domain.ExtractedDocument
	err error
}

func (e stubExtractor) Extract(ctx context.Context, fileName string, data []byte) (domain.ExtractedDocument, error) {
	return e.doc, e.err
}

type memObjects struct {
	objects map[string][]byte
	err     error
}

func (m *memObjects) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (m *memObjects) DownloadObject(ctx context.Context, key, destPath string) error {
	return nil
}

func (m *memObjects) UploadObject(ctx context.Context, key string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.objects[key] = data
	return nil
}

func newDocumentService(s *services, objects *memObjects, extractor ocr.Extractor) *DocumentService {
	svc := NewDocumentService(s.mem.store().Documents, objects, extractor, s.agentLogs, nil, nil)
	svc.now = fixedNow
	return svc
}

func TestUploadCompletesExtraction(t *testing.T) {
	s := newServices()
	objects := &memObjects{objects: map[string][]byte{}}
	vendor := "Sharma Traders"
	svc := newDocumentService(s, objects, stubExtractor{doc: domain.ExtractedDocument{
		DocumentType: "Invoice",
		VendorName:   &vendor,
		LineItems:    []domain.LineItem{{Description: "Cement", Quantity: 2, UnitPrice: 10, Total: 20}},
	}})

	doc, err := svc.Upload(context.Background(), 1, "invoice.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentCompleted, doc.Status)
	require.NotNil(t, doc.DocumentType)
	assert.Equal(t, "Invoice", *doc.DocumentType)
	assert.Contains(t, string(doc.ExtractedJSON), `"vendor_name":"Sharma Traders"`)
	require.NotNil(t, doc.ProcessedAt)
	assert.Equal(t, testNow, *doc.ProcessedAt)
	assert.Contains(t, objects.objects, doc.ObjectKey)

	stored, err := svc.Get(context.Background(), 1, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentCompleted, stored.Status)

	require.Len(t, s.mem.logs, 1)
	assert.Equal(t, domain.AgentVisualEye, s.mem.logs[0].AgentName)
	assert.Equal(t, domain.SeverityInfo, s.mem.logs[0].Severity)
}

func TestUploadRecordsExtractionFailure(t *testing.T) {
	s := newServices()
	svc := newDocumentService(s, &memObjects{objects: map[string][]byte{}}, nil)

	doc, err := svc.Upload(context.Background(), 1, "scan.png", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentFailed, doc.Status)
	assert.Nil(t, doc.DocumentType)
	assert.Empty(t, doc.ExtractedJSON)
	assert.Equal(t, domain.SeverityWarning, s.mem.logs[0].Severity)
}

func TestUploadValidation(t *testing.T) {
	s := newServices()
	svc := newDocumentService(s, &memObjects{objects: map[string][]byte{}}, nil)

	_, err := svc.Upload(context.Background(), 1, "", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Upload(context.Background(), 1, "a.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUploadStorageError(t *testing.T) {
	s := newServices()
	boom := errors.New("bucket unavailable")
	svc := newDocumentService(s, &memObjects{err: boom}, nil)

	_, err := svc.Upload(context.Background(), 1, "a.pdf", []byte("x"))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.mem.docs)
}

func TestListDocumentsNewestFirst(t *testing.T) {
	s := newServices()
	svc := newDocumentService(s, &memObjects{objects: map[string][]byte{}}, nil)
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := svc.Upload(context.Background(), 1, name, []byte("x"))
		require.NoError(t, err)
	}

	docs, err := svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c.pdf", docs[0].FileName)

	docs, err = svc.List(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}
