// Package ledger keeps an append-only SQLite record of trades and
// conversations. Callers treat every failure here as non-fatal.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"athena/internal/logging"

	_ "modernc.org/sqlite"
)

// Kind is the direction of a trade.
type Kind string

const (
	KindBuy  Kind = "buy"
	KindSell Kind = "sell"
)

// Trade is one buy or sell at a quoted price.
type Trade struct {
	ID        int64
	SessionID string
	Kind      Kind
	Cash      float64 // BRL spent (buy) or received (sell)
	Asset     float64 // BTC units acquired or sold
	Price     float64 // BRL per BTC
	At        time.Time
}

// Conversation is one free-text question and whether it was answered.
type Conversation struct {
	ID        int64
	SessionID string
	Mode      string
	Prompt    string
	Answered  bool
	At        time.Time
}

// Ledger is a SQLite-backed ledger.
type Ledger struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// Open creates or opens the ledger at path.
func Open(path string) (*Ledger, error) {
	timer := logging.StartTimer(logging.CategoryStore, "ledger.Open")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("ledger: failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("ledger: failed to set journal_mode=WAL: %v", err)
	}

	l := &Ledger{db: db, path: path, now: time.Now}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize ledger schema: %w", err)
	}

	logging.Store("ledger opened at %s", path)
	return l, nil
}

func (l *Ledger) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('buy', 'sell')),
		cash REAL NOT NULL,
		asset REAL NOT NULL,
		price REAL NOT NULL,
		at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_at ON trades(at);

	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		prompt TEXT NOT NULL,
		answered INTEGER NOT NULL DEFAULT 0,
		at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_at ON conversations(at);
	`
	if _, err := l.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Path returns the database file.
func (l *Ledger) Path() string {
	return l.path
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) stamp(at time.Time) time.Time {
	if at.IsZero() {
		return l.now()
	}
	return at
}

// RecordTrade appends t and returns its id. A zero At is set to now.
func (l *Ledger) RecordTrade(ctx context.Context, t Trade) (int64, error) {
	if t.Kind != KindBuy && t.Kind != KindSell {
		return 0, fmt.Errorf("record trade: unknown kind %q", t.Kind)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := l.db.ExecContext(ctx,
		`INSERT INTO trades (session_id, kind, cash, asset, price, at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.SessionID, string(t.Kind), t.Cash, t.Asset, t.Price, l.stamp(t.At).UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("record trade: %w", err)
	}
	return res.LastInsertId()
}

// RecordConversation appends c and returns its id. A zero At is set to now.
func (l *Ledger) RecordConversation(ctx context.Context, c Conversation) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	answered := 0
	if c.Answered {
		answered = 1
	}
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO conversations (session_id, mode, prompt, answered, at) VALUES (?, ?, ?, ?, ?)`,
		c.SessionID, c.Mode, c.Prompt, answered, l.stamp(c.At).UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("record conversation: %w", err)
	}
	return res.LastInsertId()
}

// RecentTrades returns up to n trades, newest first.
func (l *Ledger) RecentTrades(ctx context.Context, n int) ([]Trade, error) {
	if n <= 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, session_id, kind, cash, asset, price, at
		FROM trades ORDER BY at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		var (
			t    Trade
			kind string
			at   int64
		)
		if err := rows.Scan(&t.ID, &t.SessionID, &kind, &t.Cash, &t.Asset, &t.Price, &at); err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		t.Kind = Kind(kind)
		t.At = time.Unix(0, at)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// RecentConversations returns up to n conversations, newest first.
func (l *Ledger) RecentConversations(ctx context.Context, n int) ([]Conversation, error) {
	if n <= 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, session_id, mode, prompt, answered, at
		FROM conversations ORDER BY at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		var (
			c        Conversation
			answered int
			at       int64
		)
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Mode, &c.Prompt, &answered, &at); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		c.Answered = answered != 0
		c.At = time.Unix(0, at)
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// Totals sums cash flow over all trades.
func (l *Ledger) Totals(ctx context.Context) (spent, received float64, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := l.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'buy' THEN cash END), 0),
			COALESCE(SUM(CASE WHEN kind = 'sell' THEN cash END), 0)
		FROM trades`)
	if err := row.Scan(&spent, &received); err != nil {
		return 0, 0, fmt.Errorf("sum trades: %w", err)
	}
	return spent, received, nil
}
