package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"CryptoPilot/internal/model"
)

// SQLStore persists ledger state to SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// OpenSQLite opens (or creates) the SQLite database and runs migrations.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite ledger: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	for _, p := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=3000"} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	return newSQLStore(ctx, db, "sqlite")
}

// OpenPostgres connects to Postgres using a lib/pq DSN and runs migrations.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, "postgres")
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect string) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[INFO] %s ledger opened", dialect)
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS portfolios (
			mode       TEXT PRIMARY KEY,
			cash       TEXT NOT NULL,
			asset      TEXT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS trade_history (
			mode         TEXT NOT NULL,
			seq          INTEGER NOT NULL,
			id           TEXT NOT NULL,
			side         TEXT NOT NULL,
			price        TEXT NOT NULL,
			asset_amount TEXT NOT NULL,
			notional     TEXT NOT NULL,
			executed_at  BIGINT NOT NULL,
			display_time TEXT NOT NULL,
			PRIMARY KEY (mode, seq)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders into $n for Postgres.
func rebind(dialect, query string) string {
	if dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) q(query string) string { return rebind(s.dialect, query) }

func (s *SQLStore) ReadPortfolio(ctx context.Context, mode model.Mode) (model.Portfolio, bool, error) {
	var p model.Portfolio
	err := s.db.QueryRowContext(ctx, s.q(`SELECT cash, asset FROM portfolios WHERE mode = ?`), string(mode)).
		Scan(&p.Cash, &p.Asset)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, false, nil
	}
	if err != nil {
		return model.Portfolio{}, false, err
	}
	return p, true, nil
}

func (s *SQLStore) WritePortfolio(ctx context.Context, mode model.Mode, p model.Portfolio) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO portfolios (mode, cash, asset, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT (mode) DO UPDATE SET cash = excluded.cash, asset = excluded.asset, updated_at = excluded.updated_at`),
		string(mode), p.Cash.String(), p.Asset.String(), time.Now().Unix(),
	)
	return err
}

func (s *SQLStore) ReadHistory(ctx context.Context, mode model.Mode) ([]model.Trade, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, side, price, asset_amount, notional, executed_at, display_time
		FROM trade_history WHERE mode = ? ORDER BY seq`), string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []model.Trade
	for rows.Next() {
		var (
			t          model.Trade
			side       string
			executedAt int64
		)
		if err := rows.Scan(&t.ID, &side, &t.Price, &t.AssetAmount, &t.Notional, &executedAt, &t.Time); err != nil {
			return nil, err
		}
		t.Side = model.Side(side)
		t.ExecutedAt = time.Unix(0, executedAt).UTC()
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// WriteHistory replaces the mode's history in one transaction.
func (s *SQLStore) WriteHistory(ctx context.Context, mode model.Mode, trades []model.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM trade_history WHERE mode = ?`), string(mode)); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.q(`INSERT INTO trade_history
		(mode, seq, id, side, price, asset_amount, notional, executed_at, display_time)
		VALUES (?,?,?,?,?,?,?,?,?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range trades {
		if _, err := stmt.ExecContext(ctx,
			string(mode), i, t.ID, string(t.Side),
			t.Price.String(), t.AssetAmount.String(), t.Notional.String(),
			t.ExecutedAt.UTC().UnixNano(), t.Time,
		); err != nil {
			return fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Close() error {
	log.Printf("[INFO] closing %s ledger", s.dialect)
	return s.db.Close()
}
