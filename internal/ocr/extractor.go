// Package ocr turns uploaded invoices, purchase orders and statements into
// structured line items using Google Gemini.
package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/spivot-hq/spivot/backend-go/internal/config"
	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

const extractionPrompt = `Extract the following from this document and return strictly structured JSON:

{
    "document_type": "Invoice" | "Purchase Order" | "Bank Statement" | "Receipt" | "Other",
    "vendor_name": "string or null",
    "date": "YYYY-MM-DD or null",
    "line_items": [
        {"description": "string", "quantity": number, "unit_price": number, "total": number}
    ],
    "total_amount": number or null,
    "tax": number or null
}

Only return valid JSON, no additional text or explanation.`

const (
	DocumentTypeOther = "Other"

	extractionTemperature = 0.1
	extractionMaxTokens   = 2048
)

// ErrDisabled is returned when no extraction backend is configured.
var ErrDisabled = errors.New("document extraction is disabled")

// Extractor reads structured data out of a document.
type Extractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (domain.ExtractedDocument, error)
}

// GeminiExtractor sends the raw document together with the extraction
// prompt to a Gemini model.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
	cfg    config.OCRConfig
}

func NewGeminiExtractor(ctx context.Context, cfg config.OCRConfig) (*GeminiExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key must be provided")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(extractionTemperature)
	model.SetMaxOutputTokens(extractionMaxTokens)

	return &GeminiExtractor{client: client, model: model, cfg: cfg}, nil
}

func (e *GeminiExtractor) Close() error {
	return e.client.Close()
}

func (e *GeminiExtractor) Extract(ctx context.Context, fileName string, data []byte) (domain.ExtractedDocument, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	mimeType := MIMEType(fileName)
	resp, err := e.model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(extractionPrompt),
	)
	if err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("gemini generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return domain.ExtractedDocument{}, fmt.Errorf("gemini returned no content for %s", fileName)
	}

	doc := ParseExtraction(text)
	log.Debug().
		Str("file_name", fileName).
		Str("mime_type", mimeType).
		Str("document_type", doc.DocumentType).
		Int("line_items", len(doc.LineItems)).
		Msg("Document extracted")
	return doc, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}

// ParseExtraction decodes a model reply. Replies that are not valid JSON
// yield an "Other" document carrying the parse error in RawText.
func ParseExtraction(reply string) domain.ExtractedDocument {
	text := stripCodeFence(reply)

	var doc domain.ExtractedDocument
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return domain.ExtractedDocument{
			DocumentType: DocumentTypeOther,
			LineItems:    []domain.LineItem{},
			RawText:      fmt.Sprintf("JSON parsing error: %v", err),
		}
	}

	if doc.DocumentType == "" {
		doc.DocumentType = DocumentTypeOther
	}
	if doc.LineItems == nil {
		doc.LineItems = []domain.LineItem{}
	}
	doc.RawText = text
	return doc
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// MIMEType maps a file extension to the content type sent to the model.
func MIMEType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

type disabledExtractor struct{}

// NewDisabledExtractor is used when no API key is configured.
func NewDisabledExtractor() Extractor {
	return disabledExtractor{}
}

func (disabledExtractor) Extract(ctx context.Context, fileName string, data []byte) (domain.ExtractedDocument, error) {
	return domain.ExtractedDocument{}, ErrDisabled
}

var _ Extractor = (*GeminiExtractor)(nil)
