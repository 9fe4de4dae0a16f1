package storage

// sqlite.go — historial de runs y tablas de features.
//
// Estrategia:
//   - `runs`: una fila por build (modo, rango, filas emitidas). Permite
//     comparar feature-set A vs B entre runs sin refetchear del provider.
//   - `feature_rows`: UPSERT por (date, ticker, expiry) — reconstruir el
//     mismo rango sobreescribe con datos idénticos (el pipeline es
//     determinista), extenderlo añade días nuevos.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/optflow/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Una fila por build ejecutado
CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    created_at DATETIME NOT NULL,
    ticker     TEXT     NOT NULL,
    mode       TEXT     NOT NULL, -- 'rolling' | 'fixed'
    start_date TEXT     NOT NULL,
    end_date   TEXT     NOT NULL,
    expiry     TEXT,
    row_count  INTEGER  NOT NULL DEFAULT 0
);

-- Una fila por (date, ticker, expiry), sin duplicados entre runs
CREATE TABLE IF NOT EXISTS feature_rows (
    date         TEXT    NOT NULL,
    ticker       TEXT    NOT NULL,
    expiry       TEXT    NOT NULL DEFAULT '',
    trades_count INTEGER NOT NULL,
    notional     REAL    NOT NULL,
    avg_price    REAL    NOT NULL,
    price_std    REAL    NOT NULL,
    min_price    REAL    NOT NULL,
    max_price    REAL    NOT NULL,
    run_id       TEXT    NOT NULL,
    PRIMARY KEY (date, ticker, expiry)
);

CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_rows_ticker ON feature_rows(ticker, date);
`

const dateLayout = "2006-01-02"

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveTable persiste el run y hace upsert de sus filas en una transacción.
func (s *SQLiteStorage) SaveTable(ctx context.Context, runID string, table *domain.FeatureTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveTable: begin tx: %w", err)
	}
	defer tx.Rollback()

	mode := "rolling"
	var expiry any
	if table.HasExpiry {
		mode = "fixed"
		expiry = table.Expiry.Format(dateLayout)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, ticker, mode, start_date, end_date, expiry, row_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), table.Ticker, mode,
		table.Start.Format(dateLayout), table.End.Format(dateLayout),
		expiry, len(table.Rows),
	); err != nil {
		return fmt.Errorf("storage.SaveTable: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO feature_rows
			(date, ticker, expiry, trades_count, notional, avg_price, price_std,
			 min_price, max_price, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, ticker, expiry) DO UPDATE SET
			trades_count = excluded.trades_count,
			notional     = excluded.notional,
			avg_price    = excluded.avg_price,
			price_std    = excluded.price_std,
			min_price    = excluded.min_price,
			max_price    = excluded.max_price,
			run_id       = excluded.run_id
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveTable: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range table.Rows {
		rowExpiry := ""
		if table.HasExpiry {
			rowExpiry = r.Expiry.Format(dateLayout)
		}
		if _, err := stmt.ExecContext(ctx,
			r.Date.Format(dateLayout),
			r.Ticker,
			rowExpiry,
			r.TradesCount,
			r.Notional,
			r.AvgPrice,
			r.PriceStdDev,
			r.MinPrice,
			r.MaxPrice,
			runID,
		); err != nil {
			return fmt.Errorf("storage.SaveTable: upsert %s/%s: %w", r.Ticker, r.Date.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveTable: commit: %w", err)
	}
	return nil
}

// GetTable devuelve las filas guardadas de un ticker en [from, to],
// ascendente por fecha — el mismo orden que emite el builder.
func (s *SQLiteStorage) GetTable(ctx context.Context, ticker string, from, to time.Time) (*domain.FeatureTable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, expiry, trades_count, notional, avg_price, price_std, min_price, max_price
		FROM feature_rows
		WHERE ticker = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, ticker, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("storage.GetTable: query: %w", err)
	}
	defer rows.Close()

	table := &domain.FeatureTable{Ticker: ticker, Start: from, End: to}
	for rows.Next() {
		var r domain.FeatureRow
		var dateStr, expiryStr string

		if err := rows.Scan(
			&dateStr,
			&expiryStr,
			&r.TradesCount,
			&r.Notional,
			&r.AvgPrice,
			&r.PriceStdDev,
			&r.MinPrice,
			&r.MaxPrice,
		); err != nil {
			return nil, fmt.Errorf("storage.GetTable: scan row: %w", err)
		}

		r.Ticker = ticker
		r.Date, _ = time.ParseInLocation(dateLayout, dateStr, time.UTC)
		if expiryStr != "" {
			r.Expiry, _ = time.ParseInLocation(dateLayout, expiryStr, time.UTC)
			table.HasExpiry = true
			table.Expiry = r.Expiry
		}
		table.Rows = append(table.Rows, r)
	}

	return table, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
