package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	if err := app.Run(append([]string{"spivot"}, args...)); err != nil {
		return nil, err
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &body), out.String())
	return body, nil
}

const statementCSV = `date,amount,kind,category
2025-01-05,4000,credit,sales
2025-02-05,4500,credit,sales
2025-03-05,5000,credit,sales
2025-03-06,900,debit,rent
`

func TestCashflowCommand(t *testing.T) {
	body, err := run(t, "cashflow", "--file", writeFile(t, "tx.csv", statementCSV), "--balance", "20000")
	require.NoError(t, err)

	analysis := body["analysis"].(map[string]any)
	assert.InDelta(t, 20000, analysis["current_balance"], 1e-9)
	assert.NotEmpty(t, body["summary"])
}

func TestCashflowCommandRequiresFile(t *testing.T) {
	_, err := run(t, "cashflow")
	assert.Error(t, err)
}

func TestScoreCommand(t *testing.T) {
	vendors := writeFile(t, "vp.csv", "vendor,amount,due_date,paid_date\nMill Co,300,2025-02-10,2025-02-09\n")
	body, err := run(t, "score", "--file", writeFile(t, "tx.csv", statementCSV), "--vendor-file", vendors)
	require.NoError(t, err)

	score := body["score"].(map[string]any)
	assert.GreaterOrEqual(t, score["score"].(float64), 300.0)
	assert.LessOrEqual(t, score["score"].(float64), 900.0)
	assert.NotEmpty(t, body["interpretation"])
}

func TestForecastCommandIsReproducibleWithSeed(t *testing.T) {
	history := writeFile(t, "history.csv", "date,value\n2025-03-01,100\n2025-03-02,120\n2025-03-03,110\n")

	first, err := run(t, "forecast", "--file", history, "--business-type", "retail", "--days", "7", "--seed", "42")
	require.NoError(t, err)
	second, err := run(t, "forecast", "--file", history, "--business-type", "retail", "--days", "7", "--seed", "42")
	require.NoError(t, err)

	values := func(body map[string]any) []any {
		fc := body["forecast"].(map[string]any)
		out := []any{fc["market_sentiment"]}
		for _, p := range fc["predicted_demand"].([]any) {
			out = append(out, p.(map[string]any)["value"])
		}
		return out
	}
	assert.Equal(t, values(first), values(second))
	assert.Len(t, values(first), 8)
}

func TestForecastCommandRejectsUnknownBusinessType(t *testing.T) {
	_, err := run(t, "forecast", "--business-type", "mining")
	assert.Error(t, err)
}

func TestReorderCommand(t *testing.T) {
	inventory := writeFile(t, "items.csv", "sku,name,current_stock,lead_time_days,unit_cost\nA,Alpha,0,5,3\nB,Beta,1000,5,3\n")
	demand := writeFile(t, "demand.csv", "sku,predicted_demand\nA,60\nB,60\n")

	body, err := run(t, "reorder", "--inventory", inventory, "--demand", demand)
	require.NoError(t, err)

	orders := body["orders"].([]any)
	require.Len(t, orders, 1)
	assert.Equal(t, "A", orders[0].(map[string]any)["sku"])
}
