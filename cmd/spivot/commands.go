package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/spivot-hq/spivot/backend-go/internal/config"
	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/credit"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/forecast"
	"github.com/spivot-hq/spivot/backend-go/internal/repository/postgres"
	"github.com/spivot-hq/spivot/backend-go/internal/service"
	"github.com/spivot-hq/spivot/backend-go/internal/statement"
	"github.com/spivot-hq/spivot/backend-go/pkg/logger"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "spivot",
		Usage: "Run the Spivot decision engine on local CSV or XLSX files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "policy",
				Usage:   "Engine policy file (yaml, json or toml)",
				EnvVars: []string{"ENGINE_POLICY_FILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			cashflowCommand(),
			scoreCommand(),
			forecastCommand(),
			reorderCommand(),
			migrateCommand(),
		},
	}
}

func fileFlag(name, usage string, required bool) *cli.StringFlag {
	return &cli.StringFlag{Name: name, Usage: usage, Required: required}
}

func cashflowCommand() *cli.Command {
	return &cli.Command{
		Name:  "cashflow",
		Usage: "Analyse burn rate and runway from a transaction statement",
		Flags: []cli.Flag{
			fileFlag("file", "Transaction statement", true),
			&cli.Float64Flag{Name: "balance", Usage: "Current balance; derived from the statement when omitted"},
		},
		Action: func(c *cli.Context) error {
			engine, err := newEngine(c, 0)
			if err != nil {
				return err
			}
			txns, err := readTransactions(c.String("file"))
			if err != nil {
				return err
			}

			var balance *float64
			if c.IsSet("balance") {
				b := c.Float64("balance")
				balance = &b
			}

			analysis, err := engine.Liquidity.Analyze(txns, balance)
			if err != nil {
				return err
			}
			return writeJSON(c, map[string]any{
				"analysis": analysis,
				"summary":  engine.Liquidity.Summary(analysis),
			})
		},
	}
}

func scoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "Compute the Spivot credit score from a statement",
		Flags: []cli.Flag{
			fileFlag("file", "Transaction statement", true),
			fileFlag("vendor-file", "Vendor payment history", false),
		},
		Action: func(c *cli.Context) error {
			engine, err := newEngine(c, 0)
			if err != nil {
				return err
			}
			txns, err := readTransactions(c.String("file"))
			if err != nil {
				return err
			}

			var payments []domain.VendorPayment
			if path := c.String("vendor-file"); path != "" {
				table, err := statement.Open(path)
				if err != nil {
					return err
				}
				if payments, err = statement.VendorPayments(table); err != nil {
					return err
				}
			}

			score, err := engine.Credit.FromTransactions(txns, payments)
			if err != nil {
				return err
			}
			return writeJSON(c, map[string]any{
				"score":          score,
				"interpretation": credit.Interpretation(score.Score),
			})
		},
	}
}

func forecastCommand() *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Forecast daily demand from a history file",
		Flags: []cli.Flag{
			fileFlag("file", "Demand history with date and value columns", false),
			&cli.StringFlag{Name: "business-type", Value: "manufacturing", Usage: "manufacturing, retail, trading or service"},
			&cli.IntFlag{Name: "days", Value: service.DefaultForecastDays},
			&cli.Uint64Flag{Name: "seed", Usage: "Fix the random source for reproducible output"},
		},
		Action: func(c *cli.Context) error {
			bt, err := domain.ParseBusinessType(c.String("business-type"))
			if err != nil {
				return err
			}
			engine, err := newEngine(c, c.Uint64("seed"))
			if err != nil {
				return err
			}

			var history []domain.DemandPoint
			if path := c.String("file"); path != "" {
				table, err := statement.Open(path)
				if err != nil {
					return err
				}
				if history, err = statement.DemandHistory(table); err != nil {
					return err
				}
			}

			fc, err := engine.Forecast.Forecast(history, bt, c.Int("days"))
			if err != nil {
				return err
			}
			return writeJSON(c, map[string]any{
				"forecast": fc,
				"summary":  forecast.Summary(fc),
			})
		},
	}
}

func reorderCommand() *cli.Command {
	return &cli.Command{
		Name:  "reorder",
		Usage: "Draft purchase orders for an inventory snapshot",
		Flags: []cli.Flag{
			fileFlag("inventory", "Inventory snapshot", true),
			fileFlag("demand", "Predicted demand per SKU; defaults to the fallback demand", false),
		},
		Action: func(c *cli.Context) error {
			engine, err := newEngine(c, 0)
			if err != nil {
				return err
			}

			table, err := statement.Open(c.String("inventory"))
			if err != nil {
				return err
			}
			items, err := statement.Inventory(table)
			if err != nil {
				return err
			}

			demand := map[string]float64{}
			if path := c.String("demand"); path != "" {
				dt, err := statement.Open(path)
				if err != nil {
					return err
				}
				if demand, err = statement.DemandBySKU(dt); err != nil {
					return err
				}
			}

			orders, err := engine.Reorder.BatchOptimize(items, demand)
			if err != nil {
				return err
			}
			alerts, err := engine.Reorder.BatchAlerts(items, demand)
			if err != nil {
				return err
			}
			return writeJSON(c, map[string]any{"orders": orders, "alerts": alerts})
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the Postgres schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Usage:    "Database connection string",
				Required: true,
				EnvVars:  []string{"DATABASE_URL"},
			},
		},
		Action: func(c *cli.Context) error {
			db, err := postgres.Open(c.String("db-url"), 1)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(c.Context, 2*time.Minute)
			defer cancel()
			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			log.Info().Msg("Migrations applied")
			return writeJSON(c, map[string]string{"status": "migrated"})
		},
	}
}

// newEngine builds the engine from the policy flag. A zero seed falls back to
// the policy seed, then to the clock.
func newEngine(c *cli.Context, seed uint64) (*service.Engine, error) {
	cfg, err := config.LoadEnginePolicy(c.String("policy"))
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = cfg.ForecastSeed(time.Now())
	}
	return service.NewEngine(cfg, rand.NewPCG(seed, seed)), nil
}

func readTransactions(path string) ([]domain.Transaction, error) {
	table, err := statement.Open(path)
	if err != nil {
		return nil, err
	}
	txns, err := statement.Transactions(table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return txns, nil
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
