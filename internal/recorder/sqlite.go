package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"CryptoPilot/internal/model"
)

// SQLiteRecorder journals analysis cycles to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_cycles (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			mode       TEXT,
			oracle     TEXT,
			price      REAL,
			signal     TEXT,
			confidence REAL,
			reasoning  TEXT,
			outcome    TEXT,
			trade_id   TEXT,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON analysis_cycles(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(evt *CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO analysis_cycles
		(timestamp, mode, oracle, price, signal, confidence, reasoning, outcome, trade_id, error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		at.UnixMilli(), string(evt.Mode), evt.Oracle, evt.Price,
		string(evt.Insight.Signal), evt.Insight.Confidence, evt.Insight.Reasoning,
		string(evt.Outcome), evt.TradeID, evt.Error,
	)
	return err
}

// RecentCycles returns up to limit cycles, newest first.
func (r *SQLiteRecorder) RecentCycles(limit int) ([]CycleEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, mode, oracle, price, signal, confidence, reasoning, outcome, trade_id, error
		FROM analysis_cycles ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleEvent
	for rows.Next() {
		var (
			ts                    int64
			mode, signal, outcome string
			evt                   CycleEvent
		)
		if err := rows.Scan(&ts, &mode, &evt.Oracle, &evt.Price, &signal, &evt.Insight.Confidence,
			&evt.Insight.Reasoning, &outcome, &evt.TradeID, &evt.Error); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		evt.At = time.UnixMilli(ts)
		evt.Mode = model.Mode(mode)
		evt.Insight.Signal = model.Signal(signal)
		evt.Outcome = Outcome(outcome)
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
