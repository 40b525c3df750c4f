package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/fib_bracket/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			symbol TEXT NOT NULL,
			high REAL NOT NULL,
			low REAL NOT NULL,
			level_below REAL NOT NULL,
			level_low REAL NOT NULL,
			level_entry REAL NOT NULL,
			level_high REAL NOT NULL,
			level_above REAL NOT NULL,
			degenerate BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			side TEXT NOT NULL,
			symbol TEXT NOT NULL,
			entry REAL NOT NULL,
			take_profit REAL NOT NULL,
			stop_loss REAL NOT NULL,
			volume REAL NOT NULL,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_run_orders_run ON run_orders(run_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

// RunRepository Implementation

func (s *SQLiteStore) SaveRun(ctx context.Context, run *domain.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (mode, symbol, high, low, level_below, level_low, level_entry, level_high, level_above, degenerate, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Mode, run.Symbol, run.Prices.High, run.Prices.Low,
		run.Levels.Below, run.Levels.Low, run.Levels.Entry, run.Levels.High, run.Levels.Above,
		run.Degenerate, run.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, o := range run.Orders {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_orders (run_id, side, symbol, entry, take_profit, stop_loss, volume, status, attempts, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, o.Spec.Side, o.Spec.Symbol, o.Spec.Entry, o.Spec.TakeProfit, o.Spec.StopLoss, o.Spec.Volume,
			o.Status, o.Attempts, o.Error)
		if err != nil {
			return 0, fmt.Errorf("failed to insert order: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const runColumns = `id, mode, symbol, high, low, level_below, level_low, level_entry, level_high, level_above, degenerate, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var r domain.Run
	err := row.Scan(&r.ID, &r.Mode, &r.Symbol, &r.Prices.High, &r.Prices.Low,
		&r.Levels.Below, &r.Levels.Low, &r.Levels.Entry, &r.Levels.High, &r.Levels.Above,
		&r.Degenerate, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	if run.Orders, err = s.listOrders(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, run := range runs {
		if run.Orders, err = s.listOrders(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *SQLiteStore) listOrders(ctx context.Context, runID int64) ([]domain.OrderResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT side, symbol, entry, take_profit, stop_loss, volume, status, attempts, error FROM run_orders WHERE run_id = ? ORDER BY id`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.OrderResult
	for rows.Next() {
		var o domain.OrderResult
		if err := rows.Scan(&o.Spec.Side, &o.Spec.Symbol, &o.Spec.Entry, &o.Spec.TakeProfit, &o.Spec.StopLoss,
			&o.Spec.Volume, &o.Status, &o.Attempts, &o.Error); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
