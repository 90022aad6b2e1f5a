package config

import (
	"fmt"
	"os"
	"strings"

	"planfact/internal/logger"
	"planfact/internal/reconciliation"
)

// Zero-amount credit note policies.
const (
	ZeroCreditReject = "reject"
	ZeroCreditAllow  = "allow"
)

type Config struct {
	// Plan persistence
	PlanDBPath string

	// Google Sheets source (optional)
	GoogleSheetURL string

	// Sheet names, used for both xlsx workbooks and Google Sheets
	InvoiceSheet string
	CreditSheet  string

	// Column layouts, "field=LETTER" lists
	InvoiceColumns string
	CreditColumns  string

	// Only rows in this currency are reconciled
	Currency string

	// Invoice series codes recognized in credit note notes
	PrimaryPrefixes   []string
	AlternatePrefixes []string

	// What to do with zero-amount credit notes
	ZeroCreditPolicy string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		PlanDBPath:        getEnv("PLAN_DB_PATH", "./data/plans.db"),
		GoogleSheetURL:    getEnv("GOOGLE_SHEET_URL", ""),
		InvoiceSheet:      getEnv("INVOICE_SHEET", "Invoices"),
		CreditSheet:       getEnv("CREDIT_SHEET", "Credits"),
		InvoiceColumns:    getEnv("INVOICE_COLUMNS", reconciliation.DefaultInvoiceColumns),
		CreditColumns:     getEnv("CREDIT_COLUMNS", reconciliation.DefaultCreditColumns),
		Currency:          strings.ToUpper(getEnv("CURRENCY", "EUR")),
		PrimaryPrefixes:   getList("REF_PRIMARY_PREFIXES", reconciliation.DefaultPrimaryPrefixes),
		AlternatePrefixes: getList("REF_ALTERNATE_PREFIXES", reconciliation.DefaultAlternatePrefixes),
		ZeroCreditPolicy:  strings.ToLower(getEnv("ZERO_CREDIT_POLICY", ZeroCreditReject)),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:     getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:         getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Currency == "" {
		return reconciliation.NewValidationError("CURRENCY", c.Currency, "must not be empty")
	}
	if c.PlanDBPath == "" {
		return reconciliation.NewValidationError("PLAN_DB_PATH", c.PlanDBPath, "must not be empty")
	}
	switch c.ZeroCreditPolicy {
	case ZeroCreditReject, ZeroCreditAllow:
	default:
		return reconciliation.NewValidationError("ZERO_CREDIT_POLICY", c.ZeroCreditPolicy, "must be reject or allow")
	}
	if _, err := c.ReaderConfig(); err != nil {
		return err
	}
	if _, err := c.Extractor(); err != nil {
		return err
	}
	return nil
}

// ReaderConfig builds the ingestion layout from the configured sheets and columns.
func (c *Config) ReaderConfig() (reconciliation.ReaderConfig, error) {
	invoiceCols, err := reconciliation.ParseInvoiceColumns(c.InvoiceColumns)
	if err != nil {
		return reconciliation.ReaderConfig{}, fmt.Errorf("INVOICE_COLUMNS: %w", err)
	}
	creditCols, err := reconciliation.ParseCreditColumns(c.CreditColumns)
	if err != nil {
		return reconciliation.ReaderConfig{}, fmt.Errorf("CREDIT_COLUMNS: %w", err)
	}
	return reconciliation.ReaderConfig{
		InvoiceSheet:   c.InvoiceSheet,
		CreditSheet:    c.CreditSheet,
		InvoiceColumns: invoiceCols,
		CreditColumns:  creditCols,
		Currency:       c.Currency,
	}, nil
}

// Extractor builds the reference extractor for the configured prefixes.
func (c *Config) Extractor() (*reconciliation.Extractor, error) {
	return reconciliation.NewExtractor(c.PrimaryPrefixes, c.AlternatePrefixes)
}

// RejectZeroCredits reports whether zero-amount credit notes are data errors.
func (c *Config) RejectZeroCredits() bool {
	return c.ZeroCreditPolicy != ZeroCreditAllow
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
