package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

const inventoryColumns = `id, user_id, sku, name, qty, unit, reorder_level, lead_time_days, unit_cost, preferred_vendor, last_updated`

type inventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *inventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) ListItems(ctx context.Context, userID int64) ([]domain.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE user_id = $1 ORDER BY id`

	var items []domain.InventoryItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

func (r *inventoryRepository) GetItem(ctx context.Context, userID, id int64) (*domain.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE user_id = $1 AND id = $2`

	var item domain.InventoryItem
	if err := sqlx.GetContext(ctx, r.db, &item, query, userID, id); err != nil {
		return nil, notFound(err, "inventory item", id)
	}
	return &item, nil
}

func (r *inventoryRepository) GetItemsBySKU(ctx context.Context, userID int64, skus []string) ([]domain.InventoryItem, error) {
	if len(skus) == 0 {
		return []domain.InventoryItem{}, nil
	}

	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE user_id = $1 AND sku = ANY($2) ORDER BY id`

	var items []domain.InventoryItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query, userID, pq.Array(skus)); err != nil {
		return nil, fmt.Errorf("failed to get inventory by sku: %w", err)
	}
	return items, nil
}

func (r *inventoryRepository) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		INSERT INTO inventory (user_id, sku, name, qty, unit, reorder_level, lead_time_days, unit_cost, preferred_vendor, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (user_id, sku) DO UPDATE
		SET name = EXCLUDED.name,
			qty = EXCLUDED.qty,
			unit = EXCLUDED.unit,
			reorder_level = EXCLUDED.reorder_level,
			lead_time_days = EXCLUDED.lead_time_days,
			unit_cost = EXCLUDED.unit_cost,
			preferred_vendor = EXCLUDED.preferred_vendor,
			last_updated = NOW()
		RETURNING id, last_updated
	`
	err := r.db.QueryRowxContext(ctx, query,
		item.UserID, item.SKU, item.Name, item.CurrentStock, item.Unit,
		item.ReorderLevel, item.LeadTimeDays, item.UnitCost, item.PreferredVendor,
	).Scan(&item.ID, &item.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory item %s: %w", item.SKU, err)
	}
	return nil
}

func (r *inventoryRepository) DeleteItem(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("inventory item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
