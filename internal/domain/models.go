package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// User is a business profile.
type User struct {
	ID           int64        `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	Name         string       `json:"name" db:"name"`
	BusinessName string       `json:"business_name" db:"business_name"`
	BusinessType BusinessType `json:"business_type" db:"business_type"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// Transaction is a single bank statement entry. Amount is a non-negative
// magnitude; Kind carries the direction.
type Transaction struct {
	ID          int64           `json:"id,omitempty" db:"id"`
	UserID      int64           `json:"user_id,omitempty" db:"user_id"`
	Date        time.Time       `json:"date" db:"date"`
	Amount      float64         `json:"amount" db:"amount"`
	Kind        TransactionKind `json:"kind" db:"kind"`
	Category    string          `json:"category" db:"category"`
	Description *string         `json:"description,omitempty" db:"description"`
}

// InventoryItem is the current state of a stock keeping unit.
type InventoryItem struct {
	ID              int64     `json:"id,omitempty" db:"id"`
	UserID          int64     `json:"user_id,omitempty" db:"user_id"`
	SKU             string    `json:"sku" db:"sku"`
	Name            string    `json:"name" db:"name"`
	CurrentStock    float64   `json:"current_stock" db:"qty"`
	Unit            string    `json:"unit" db:"unit"`
	ReorderLevel    float64   `json:"reorder_level" db:"reorder_level"`
	LeadTimeDays    int       `json:"lead_time_days" db:"lead_time_days"`
	UnitCost        float64   `json:"unit_cost" db:"unit_cost"`
	PreferredVendor *string   `json:"preferred_vendor,omitempty" db:"preferred_vendor"`
	LastUpdated     time.Time `json:"last_updated" db:"last_updated"`
}

// VendorPayment records whether a bill was settled on time.
type VendorPayment struct {
	ID       int64      `json:"id,omitempty" db:"id"`
	UserID   int64      `json:"user_id,omitempty" db:"user_id"`
	Vendor   string     `json:"vendor" db:"vendor"`
	Amount   float64    `json:"amount" db:"amount"`
	DueDate  time.Time  `json:"due_date" db:"due_date"`
	PaidDate *time.Time `json:"paid_date,omitempty" db:"paid_date"`
	OnTime   bool       `json:"on_time" db:"on_time"`
}

// Document is an uploaded invoice, purchase order or statement.
type Document struct {
	ID            int64          `json:"id" db:"id"`
	UserID        int64          `json:"user_id" db:"user_id"`
	ObjectKey     string         `json:"file_url" db:"object_key"`
	FileName      string         `json:"file_name" db:"file_name"`
	DocumentType  *string        `json:"document_type" db:"document_type"`
	ExtractedJSON RawJSON        `json:"extracted_json,omitempty" db:"extracted_json"`
	Status        DocumentStatus `json:"status" db:"status"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	ProcessedAt   *time.Time     `json:"processed_at" db:"processed_at"`
}

// LineItem is a single extracted document line.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// ExtractedDocument is the OCR output schema.
type ExtractedDocument struct {
	DocumentType string     `json:"document_type"`
	VendorName   *string    `json:"vendor_name"`
	Date         *string    `json:"date"`
	LineItems    []LineItem `json:"line_items"`
	TotalAmount  *float64   `json:"total_amount"`
	Tax          *float64   `json:"tax"`
	RawText      string     `json:"raw_text,omitempty"`
}

// AgentLog is an audit entry written by the decision agents.
type AgentLog struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *int64    `json:"user_id,omitempty" db:"user_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	AgentName string    `json:"agent_name" db:"agent_name"`
	Action    string    `json:"action" db:"action"`
	Result    *string   `json:"result" db:"result"`
	Severity  Severity  `json:"severity" db:"severity"`
	ExtraData RawJSON   `json:"extra_data,omitempty" db:"extra_data"`
}

// RawJSON is an embedded JSON document stored in a nullable JSONB column.
type RawJSON []byte

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RawJSON) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

func (r *RawJSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = nil
	case []byte:
		*r = append(RawJSON(nil), v...)
	case string:
		*r = RawJSON(v)
	default:
		return fmt.Errorf("scan json: unsupported type %T", src)
	}
	return nil
}

func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return string(r), nil
}

// Agent names recorded on AgentLog entries.
const (
	AgentVisualEye     = "Visual Eye"
	AgentProphet       = "Prophet"
	AgentQuartermaster = "Quartermaster"
	AgentTreasurer     = "Treasurer"
	AgentUnderwriter   = "Underwriter"
)
