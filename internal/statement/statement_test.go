package statement_test

import (
	"strings"
	"testing"
	"time"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func csvTable(t *testing.T, body string) *statement.Table {
	t.Helper()
	tbl, err := statement.Read(strings.NewReader(body), "input.csv")
	require.NoError(t, err)
	return tbl
}

func TestTransactions_KindColumn(t *testing.T) {
	tbl := csvTable(t, `Date,Amount,Type,Category,Description
2025-03-01,"50,000",CREDIT,sales,March invoice
2025-03-02,1200.50,debit,rent,

`)
	txns, err := statement.Transactions(tbl)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.Equal(t, 50000.0, txns[0].Amount)
	assert.Equal(t, domain.KindCredit, txns[0].Kind)
	require.NotNil(t, txns[0].Description)
	assert.Equal(t, "March invoice", *txns[0].Description)

	assert.Equal(t, domain.KindDebit, txns[1].Kind)
	assert.Equal(t, "rent", txns[1].Category)
	assert.Nil(t, txns[1].Description)
}

func TestTransactions_SignedAmounts(t *testing.T) {
	tbl := csvTable(t, "date,amount,category\n01/03/2025,-300,fuel\n02/03/2025,900,sales\n")
	txns, err := statement.Transactions(tbl)
	require.NoError(t, err)

	assert.Equal(t, domain.KindDebit, txns[0].Kind)
	assert.Equal(t, 300.0, txns[0].Amount)
	assert.Equal(t, time.March, txns[0].Date.Month())
	assert.Equal(t, domain.KindCredit, txns[1].Kind)
}

func TestTransactions_Errors(t *testing.T) {
	_, err := statement.Transactions(csvTable(t, "date,category\n2025-01-01,x\n"))
	assert.ErrorContains(t, err, "missing required column: amount")

	_, err = statement.Transactions(csvTable(t, "date,amount,kind\n2025-01-01,10,refund\n"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "line 2")

	_, err = statement.Transactions(csvTable(t, "date,amount,kind\nyesterday,10,credit\n"))
	field, _ := domain.InvalidField(err)
	assert.Equal(t, "date", field)
}

func TestInventoryAndDemand(t *testing.T) {
	items, err := statement.Inventory(csvTable(t, `sku,name,qty,unit,lead_time_days,unit_cost,reorder_level,preferred_vendor
RICE-25,Basmati rice,10,bags,7,12.5,40,Acme Mills
OIL-5,Sunflower oil,80,cans,3,,,
`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "RICE-25", items[0].SKU)
	assert.Equal(t, 10.0, items[0].CurrentStock)
	assert.Equal(t, 7, items[0].LeadTimeDays)
	require.NotNil(t, items[0].PreferredVendor)
	assert.Equal(t, "Acme Mills", *items[0].PreferredVendor)
	assert.Equal(t, 0.0, items[1].UnitCost)
	assert.Nil(t, items[1].PreferredVendor)

	demand, err := statement.DemandBySKU(csvTable(t, "sku,predicted_demand\nRICE-25,300\nOIL-5,45\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"RICE-25": 300, "OIL-5": 45}, demand)
}

func TestDemandHistory(t *testing.T) {
	points, err := statement.DemandHistory(csvTable(t, "date,value\n2025-01-01,120\n2025-01-02,135.5\n"))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 135.5, points[1].Value)
}

func TestVendorPayments_DerivesOnTime(t *testing.T) {
	payments, err := statement.VendorPayments(csvTable(t, `vendor,amount,due_date,paid_date
Acme,100,2025-01-10,2025-01-09
Acme,100,2025-02-10,2025-02-12
Beta,50,2025-02-10,
`))
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.True(t, payments[0].OnTime)
	assert.False(t, payments[1].OnTime)
	assert.False(t, payments[2].OnTime)

	explicit, err := statement.VendorPayments(csvTable(t, "vendor,on_time\nAcme,yes\nBeta,false\n"))
	require.NoError(t, err)
	assert.True(t, explicit[0].OnTime)
	assert.False(t, explicit[1].OnTime)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"date", "amount", "kind", "category"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2025-03-01", "2500", "credit", "sales"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2025-03-02", "400", "debit", "fuel"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := statement.Read(buf, "march.XLSX")
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	txns, err := statement.Transactions(tbl)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, txns[0].Amount)
	assert.Equal(t, domain.KindDebit, txns[1].Kind)
}

func TestReadEmpty(t *testing.T) {
	_, err := statement.Read(strings.NewReader(""), "empty.csv")
	assert.Error(t, err)
}
