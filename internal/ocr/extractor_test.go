package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractionFencedReply(t *testing.T) {
	reply := "```json\n" + `{
  "document_type": "Invoice",
  "vendor_name": "Sharma Traders",
  "date": "2025-02-14",
  "line_items": [{"description": "Cement", "quantity": 10, "unit_price": 350, "total": 3500}],
  "total_amount": 4130,
  "tax": 630
}` + "\n```"

	doc := ParseExtraction(reply)
	assert.Equal(t, "Invoice", doc.DocumentType)
	require.NotNil(t, doc.VendorName)
	assert.Equal(t, "Sharma Traders", *doc.VendorName)
	require.NotNil(t, doc.Date)
	assert.Equal(t, "2025-02-14", *doc.Date)
	require.Len(t, doc.LineItems, 1)
	assert.Equal(t, 3500.0, doc.LineItems[0].Total)
	require.NotNil(t, doc.TotalAmount)
	assert.Equal(t, 4130.0, *doc.TotalAmount)
	require.NotNil(t, doc.Tax)
	assert.Equal(t, 630.0, *doc.Tax)
	assert.NotContains(t, doc.RawText, "```")
}

func TestParseExtractionMissingFields(t *testing.T) {
	doc := ParseExtraction(`{"vendor_name": null}`)
	assert.Equal(t, DocumentTypeOther, doc.DocumentType)
	assert.Nil(t, doc.VendorName)
	assert.NotNil(t, doc.LineItems)
	assert.Empty(t, doc.LineItems)
	assert.Nil(t, doc.TotalAmount)
}

func TestParseExtractionInvalidJSON(t *testing.T) {
	doc := ParseExtraction("Sorry, I cannot read this document.")
	assert.Equal(t, DocumentTypeOther, doc.DocumentType)
	assert.Contains(t, doc.RawText, "JSON parsing error")
	assert.Empty(t, doc.LineItems)
}

func TestMIMEType(t *testing.T) {
	cases := map[string]string{
		"invoice.PDF":   "application/pdf",
		"scan.png":      "image/png",
		"photo.jpg":     "image/jpeg",
		"photo.JPEG":    "image/jpeg",
		"receipt.webp":  "image/webp",
		"statement.csv": "application/octet-stream",
		"noext":         "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, MIMEType(name), name)
	}
}

func TestDisabledExtractor(t *testing.T) {
	_, err := NewDisabledExtractor().Extract(context.Background(), "a.pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrDisabled)
}
