package statement

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2 Jan 2006",
}

// Transactions reads date, amount, kind and category columns. A signed
// amount without a kind column is split into a credit or debit magnitude.
func Transactions(t *Table) ([]domain.Transaction, error) {
	if err := t.require("date"); err != nil {
		return nil, err
	}
	if err := t.require("amount"); err != nil {
		return nil, err
	}
	_, hasKind := t.column("kind", "type")

	txns := make([]domain.Transaction, 0, t.Len())
	for i, rec := range t.rows {
		line := i + 2

		date, err := parseDate(t.value(rec, "date"), "date", line)
		if err != nil {
			return nil, err
		}
		amount, err := parseFloat(t.value(rec, "amount"), "amount", line)
		if err != nil {
			return nil, err
		}

		var kind domain.TransactionKind
		if hasKind {
			kind, err = domain.ParseTransactionKind(t.value(rec, "kind", "type"))
			if err != nil {
				return nil, domain.InvalidInput("kind", "line %d: %q is neither credit nor debit", line, t.value(rec, "kind", "type"))
			}
			if amount < 0 {
				return nil, domain.InvalidInput("amount", "line %d: must be a non-negative magnitude, got %v", line, amount)
			}
		} else {
			kind = domain.KindCredit
			if amount < 0 {
				kind = domain.KindDebit
				amount = -amount
			}
		}

		txn := domain.Transaction{
			Date:     date,
			Amount:   amount,
			Kind:     kind,
			Category: t.value(rec, "category"),
		}
		if desc := t.value(rec, "description", "narration"); desc != "" {
			txn.Description = &desc
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// DemandHistory reads date and value columns.
func DemandHistory(t *Table) ([]domain.DemandPoint, error) {
	if err := t.require("date"); err != nil {
		return nil, err
	}
	if err := t.require("value", "demand", "quantity"); err != nil {
		return nil, err
	}

	points := make([]domain.DemandPoint, 0, t.Len())
	for i, rec := range t.rows {
		line := i + 2
		date, err := parseDate(t.value(rec, "date"), "date", line)
		if err != nil {
			return nil, err
		}
		value, err := parseFloat(t.value(rec, "value", "demand", "quantity"), "value", line)
		if err != nil {
			return nil, err
		}
		points = append(points, domain.DemandPoint{Date: date, Value: value})
	}
	return points, nil
}

// Inventory reads item snapshots keyed by sku.
func Inventory(t *Table) ([]domain.InventoryItem, error) {
	for _, col := range [][]string{{"sku"}, {"current_stock", "qty", "quantity"}, {"lead_time_days", "lead_time"}} {
		if err := t.require(col...); err != nil {
			return nil, err
		}
	}

	items := make([]domain.InventoryItem, 0, t.Len())
	for i, rec := range t.rows {
		line := i + 2

		sku := t.value(rec, "sku")
		if sku == "" {
			return nil, domain.InvalidInput("sku", "line %d: empty", line)
		}
		stock, err := parseFloat(t.value(rec, "current_stock", "qty", "quantity"), "current_stock", line)
		if err != nil {
			return nil, err
		}
		lead, err := parseInt(t.value(rec, "lead_time_days", "lead_time"), "lead_time_days", line)
		if err != nil {
			return nil, err
		}
		cost, err := parseOptionalFloat(t.value(rec, "unit_cost", "cost"), "unit_cost", line)
		if err != nil {
			return nil, err
		}
		reorderLevel, err := parseOptionalFloat(t.value(rec, "reorder_level"), "reorder_level", line)
		if err != nil {
			return nil, err
		}

		item := domain.InventoryItem{
			SKU:          sku,
			Name:         t.value(rec, "name", "item_name"),
			CurrentStock: stock,
			Unit:         t.value(rec, "unit"),
			ReorderLevel: reorderLevel,
			LeadTimeDays: lead,
			UnitCost:     cost,
		}
		if vendor := t.value(rec, "preferred_vendor", "vendor"); vendor != "" {
			item.PreferredVendor = &vendor
		}
		items = append(items, item)
	}
	return items, nil
}

// DemandBySKU reads a sku → predicted demand map. Later rows win.
func DemandBySKU(t *Table) (map[string]float64, error) {
	if err := t.require("sku"); err != nil {
		return nil, err
	}
	if err := t.require("predicted_demand", "demand"); err != nil {
		return nil, err
	}

	demand := make(map[string]float64, t.Len())
	for i, rec := range t.rows {
		v, err := parseFloat(t.value(rec, "predicted_demand", "demand"), "predicted_demand", i+2)
		if err != nil {
			return nil, err
		}
		demand[t.value(rec, "sku")] = v
	}
	return demand, nil
}

// VendorPayments reads vendor, amount, due_date, paid_date and on_time. When
// on_time is absent it is derived from paid_date <= due_date.
func VendorPayments(t *Table) ([]domain.VendorPayment, error) {
	if err := t.require("vendor"); err != nil {
		return nil, err
	}
	_, hasOnTime := t.column("on_time")

	payments := make([]domain.VendorPayment, 0, t.Len())
	for i, rec := range t.rows {
		line := i + 2

		amount, err := parseOptionalFloat(t.value(rec, "amount"), "amount", line)
		if err != nil {
			return nil, err
		}
		p := domain.VendorPayment{Vendor: t.value(rec, "vendor"), Amount: amount}

		if raw := t.value(rec, "due_date"); raw != "" {
			if p.DueDate, err = parseDate(raw, "due_date", line); err != nil {
				return nil, err
			}
		}
		if raw := t.value(rec, "paid_date"); raw != "" {
			paid, err := parseDate(raw, "paid_date", line)
			if err != nil {
				return nil, err
			}
			p.PaidDate = &paid
		}

		if hasOnTime {
			if p.OnTime, err = parseBool(t.value(rec, "on_time"), line); err != nil {
				return nil, err
			}
		} else {
			p.OnTime = p.PaidDate != nil && !p.PaidDate.After(p.DueDate)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func parseDate(raw, field string, line int) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.InvalidInput(field, "line %d: unrecognised date %q", line, raw)
}

func parseFloat(raw, field string, line int) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "₹", "", "$", "", " ", "").Replace(raw)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.InvalidInput(field, "line %d: not a number %q", line, raw)
	}
	return v, nil
}

func parseOptionalFloat(raw, field string, line int) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return parseFloat(raw, field, line)
}

func parseInt(raw, field string, line int) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.InvalidInput(field, "line %d: not an integer %q", line, raw)
	}
	return v, nil
}

func parseBool(raw string, line int) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "y":
		return true, nil
	case "no", "n", "":
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.InvalidInput("on_time", "line %d: not a boolean %q", line, raw)
	}
	return v, nil
}
