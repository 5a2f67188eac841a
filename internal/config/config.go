package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds runtime configuration resolved from environment variables.
// Stock thresholds live here (not as package globals) so tests can vary them.
type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string

	Stock      StockConfig
	Settlement SettlementConfig
}

// StockConfig tunes the inventory ledger alerts and restock analytics.
type StockConfig struct {
	LowStockThreshold      int
	CriticalStockThreshold int
	RestockRunwayDays      int // products with less runway than this get flagged
	RestockHorizonDays     int // reorder suggestion covers this many days of sales
}

// SettlementConfig tunes the settlement/cash-reconciliation component.
type SettlementConfig struct {
	DefaultCommissionPct float64 // applied when a company has no rate set
	CashTolerance        float64 // absolute tolerance when matching collected cash
	SummaryWindowDays    int     // default period for settlement summaries
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:    getEnv("PORT", "3000"),
		DatabaseDSN: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Stock: StockConfig{
			LowStockThreshold:      getEnvInt("LOW_STOCK_THRESHOLD", 10),
			CriticalStockThreshold: getEnvInt("CRITICAL_STOCK_THRESHOLD", 5),
			RestockRunwayDays:      getEnvInt("RESTOCK_RUNWAY_DAYS", 14),
			RestockHorizonDays:     getEnvInt("RESTOCK_HORIZON_DAYS", 30),
		},
		Settlement: SettlementConfig{
			DefaultCommissionPct: 10,
			CashTolerance:        0.01,
			SummaryWindowDays:    30,
		},
	}

	if cfg.JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET not set, using insecure default (dev only)")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not an integer, using default %d", key, v, def)
		return def
	}
	return n
}
