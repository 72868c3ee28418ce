// Package repository declares the record store used by the service layer.
package repository

import (
	"context"
	"time"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
}

// TransactionFilter narrows a transaction listing. Zero fields are ignored.
type TransactionFilter struct {
	Since    *time.Time
	Kind     domain.TransactionKind
	Category string
	// Limit keeps the most recent rows; results are still returned oldest first.
	Limit int
}

type TransactionRepository interface {
	ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, txn *domain.Transaction) error
	CreateTransactions(ctx context.Context, userID int64, txns []domain.Transaction) (int, error)
	ExpenseBreakdown(ctx context.Context, userID int64) ([]domain.ExpenseCategory, error)
}

type InventoryRepository interface {
	ListItems(ctx context.Context, userID int64) ([]domain.InventoryItem, error)
	GetItem(ctx context.Context, userID, id int64) (*domain.InventoryItem, error)
	GetItemsBySKU(ctx context.Context, userID int64, skus []string) ([]domain.InventoryItem, error)
	CreateItem(ctx context.Context, item *domain.InventoryItem) error
	DeleteItem(ctx context.Context, userID, id int64) error
}

type VendorPaymentRepository interface {
	ListVendorPayments(ctx context.Context, userID int64) ([]domain.VendorPayment, error)
	CreateVendorPayment(ctx context.Context, payment *domain.VendorPayment) error
}

type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *domain.Document) error
	GetDocument(ctx context.Context, userID, id int64) (*domain.Document, error)
	ListDocuments(ctx context.Context, userID int64, limit int) ([]domain.Document, error)
	UpdateDocument(ctx context.Context, doc *domain.Document) error
}

type AgentLogRepository interface {
	CreateAgentLog(ctx context.Context, entry *domain.AgentLog) error
	// ListAgentLogs returns newest first; a nil userID lists every user.
	ListAgentLogs(ctx context.Context, userID *int64, limit int) ([]domain.AgentLog, error)
}

// Store bundles every repository.
type Store struct {
	Users          UserRepository
	Transactions   TransactionRepository
	Inventory      InventoryRepository
	VendorPayments VendorPaymentRepository
	Documents      DocumentRepository
	AgentLogs      AgentLogRepository
}
