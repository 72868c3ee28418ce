package postgres

import "github.com/spivot-hq/spivot/backend-go/internal/repository"

// NewStore wires every Postgres repository onto one pool.
func NewStore(db *DB) *repository.Store {
	return &repository.Store{
		Users:          NewUserRepository(db),
		Transactions:   NewTransactionRepository(db),
		Inventory:      NewInventoryRepository(db),
		VendorPayments: NewVendorPaymentRepository(db),
		Documents:      NewDocumentRepository(db),
		AgentLogs:      NewAgentLogRepository(db),
	}
}
