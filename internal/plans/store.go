// Package plans persists contract plans in SQLite between sessions.
package plans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"planfact/internal/balance"
	"planfact/internal/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var (
	// ErrInvalidPlan is returned for a plan without a client or with a
	// negative planned value.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrPlanNotFound is returned when deleting a plan that does not exist.
	ErrPlanNotFound = errors.New("plan not found")
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS contract_plans (
		client_key TEXT NOT NULL,
		contract_key TEXT NOT NULL,
		client TEXT NOT NULL,
		contract_id TEXT NOT NULL,
		planned TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (client_key, contract_key)
	)`,
}

// Store is the plan table on disk. Planned values are stored as decimal
// text so they round-trip exactly.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (and creates if needed) the plan database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	const op = "plans.Open"

	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%s: creating db directory: %w", op, err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: opening database: %w", op, err)
	}
	// A second connection to :memory: would see a different database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: pinging database: %w", op, err)
	}

	s := &Store{db: db, log: logger.WithComponent("plan-store")}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug().Str("path", path).Msg("Plan database opened")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Set writes the plan for (client, contractID). A later Set for the same
// normalized key replaces the earlier one, including its display spelling.
func (s *Store) Set(ctx context.Context, client, contractID string, planned decimal.Decimal) error {
	const op = "plans.Set"

	client = strings.TrimSpace(client)
	contractID = strings.TrimSpace(contractID)
	if client == "" {
		return fmt.Errorf("%s: client is required: %w", op, ErrInvalidPlan)
	}
	if planned.IsNegative() {
		return fmt.Errorf("%s: planned %s is negative: %w", op, planned, ErrInvalidPlan)
	}

	key := balance.NewContractKey(client, contractID)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contract_plans (client_key, contract_key, client, contract_id, planned, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_key, contract_key) DO UPDATE SET
			client = excluded.client,
			contract_id = excluded.contract_id,
			planned = excluded.planned,
			updated_at = excluded.updated_at`,
		key.Client, key.ContractID, client, contractID, planned.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().
		Str("client", client).
		Str("contract_id", contractID).
		Str("planned", planned.String()).
		Msg("Plan saved")
	return nil
}

// Delete removes the plan for (client, contractID).
func (s *Store) Delete(ctx context.Context, client, contractID string) error {
	const op = "plans.Delete"

	key := balance.NewContractKey(client, contractID)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM contract_plans WHERE client_key = ? AND contract_key = ?`, key.Client, key.ContractID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %s / %s: %w", op, client, contractID, ErrPlanNotFound)
	}

	s.log.Info().Str("client", client).Str("contract_id", contractID).Msg("Plan deleted")
	return nil
}

// List returns all plans ordered by client and contract.
func (s *Store) List(ctx context.Context) ([]balance.Plan, error) {
	const op = "plans.List"

	rows, err := s.db.QueryContext(ctx, `
		SELECT client, contract_id, planned, updated_at
		FROM contract_plans
		ORDER BY client_key, contract_key`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []balance.Plan
	for rows.Next() {
		var (
			p                  balance.Plan
			planned, updatedAt string
		)
		if err := rows.Scan(&p.Client, &p.ContractID, &planned, &updatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		if p.Planned, err = decimal.NewFromString(planned); err != nil {
			return nil, fmt.Errorf("%s: planned value %q for %s: %w", op, planned, p.Client, err)
		}
		if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			s.log.Warn().Str("client", p.Client).Str("updated_at", updatedAt).Msg("Unreadable plan timestamp")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Load reads every plan into a table for one session.
func (s *Store) Load(ctx context.Context) (*balance.PlanTable, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("plans.Load: %w", err)
	}
	table := balance.NewPlanTable()
	for _, p := range list {
		table.Put(p)
	}
	return table, nil
}
