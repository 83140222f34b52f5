// Package ledger mirrors the transaction log and net worth samples into
// SQLite for reporting. It is write-only from the game's point of view:
// nothing is ever loaded back into the store.
package ledger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/talgya/geofarm/internal/model"
)

// DB wraps a SQLite connection for the reporting journal.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
// ":memory:" opens a private in-memory database.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if path == ":memory:" {
		dsn = path
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT NOT NULL,
		related_entity TEXT NOT NULL,
		ts INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS net_worth (
		ts INTEGER PRIMARY KEY,
		net_worth TEXT NOT NULL,
		balance TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_ts ON transactions(ts);
	CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type txRow struct {
	ID            string `db:"id"`
	Type          string `db:"type"`
	Amount        string `db:"amount"`
	Description   string `db:"description"`
	RelatedEntity string `db:"related_entity"`
	Timestamp     int64  `db:"ts"`
}

// RecordTransactions appends ledger entries. Entries already journaled are skipped.
func (db *DB) RecordTransactions(txs []model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range txs {
		_, err := tx.NamedExec(`INSERT OR IGNORE INTO transactions
			(id, type, amount, description, related_entity, ts)
			VALUES (:id, :type, :amount, :description, :related_entity, :ts)`,
			txRow{
				ID:            t.ID,
				Type:          string(t.Type),
				Amount:        decimal.NewFromFloat(t.Amount).String(),
				Description:   t.Description,
				RelatedEntity: t.RelatedEntity,
				Timestamp:     t.Timestamp.UnixMilli(),
			})
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// RecentTransactions returns the most recent N entries, newest first.
func (db *DB) RecentTransactions(limit int) ([]model.Transaction, error) {
	var rows []txRow
	err := db.conn.Select(&rows,
		"SELECT id, type, amount, description, related_entity, ts FROM transactions ORDER BY ts DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %s amount: %w", r.ID, err)
		}
		out = append(out, model.Transaction{
			ID:            r.ID,
			Type:          model.TransactionType(r.Type),
			Amount:        amount.InexactFloat64(),
			Description:   r.Description,
			RelatedEntity: r.RelatedEntity,
			Timestamp:     time.UnixMilli(r.Timestamp).UTC(),
		})
	}
	return out, nil
}

// Summary totals journaled entries by category.
type Summary struct {
	Since    time.Time                                 `json:"since"`
	Count    int                                       `json:"count"`
	Totals   map[model.TransactionType]decimal.Decimal `json:"totals"`
	Income   decimal.Decimal                           `json:"income"`
	Expenses decimal.Decimal                           `json:"expenses"`
	Net      decimal.Decimal                           `json:"net"`
}

// Summary sums every entry at or after since. Amounts are added as
// decimals so long ledgers do not drift.
func (db *DB) Summary(since time.Time) (Summary, error) {
	var rows []struct {
		Type   string `db:"type"`
		Amount string `db:"amount"`
	}
	err := db.conn.Select(&rows, "SELECT type, amount FROM transactions WHERE ts >= ?", since.UnixMilli())
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Since:  since,
		Totals: make(map[model.TransactionType]decimal.Decimal),
	}
	for _, r := range rows {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return Summary{}, fmt.Errorf("amount %q: %w", r.Amount, err)
		}
		t := model.TransactionType(r.Type)
		s.Totals[t] = s.Totals[t].Add(amount)
		if amount.IsPositive() {
			s.Income = s.Income.Add(amount)
		} else {
			s.Expenses = s.Expenses.Add(amount.Neg())
		}
		s.Count++
	}
	s.Net = s.Income.Sub(s.Expenses)
	return s, nil
}

// NetWorthSample is one point of the net worth chart.
type NetWorthSample struct {
	At       time.Time `json:"at"`
	NetWorth float64   `json:"net_worth"`
	Balance  float64   `json:"balance"`
}

// RecordNetWorth stores a sample, replacing any sample at the same instant.
func (db *DB) RecordNetWorth(at time.Time, netWorth, balance float64) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO net_worth (ts, net_worth, balance) VALUES (?, ?, ?)",
		at.UnixMilli(),
		decimal.NewFromFloat(netWorth).String(),
		decimal.NewFromFloat(balance).String(),
	)
	return err
}

// NetWorthHistory returns the latest N samples in chronological order.
func (db *DB) NetWorthHistory(limit int) ([]NetWorthSample, error) {
	var rows []struct {
		Timestamp int64  `db:"ts"`
		NetWorth  string `db:"net_worth"`
		Balance   string `db:"balance"`
	}
	err := db.conn.Select(&rows,
		"SELECT ts, net_worth, balance FROM net_worth ORDER BY ts DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}

	out := make([]NetWorthSample, len(rows))
	for i, r := range rows {
		nw, err := decimal.NewFromString(r.NetWorth)
		if err != nil {
			return nil, fmt.Errorf("net worth %q: %w", r.NetWorth, err)
		}
		bal, err := decimal.NewFromString(r.Balance)
		if err != nil {
			return nil, fmt.Errorf("balance %q: %w", r.Balance, err)
		}
		out[len(rows)-1-i] = NetWorthSample{
			At:       time.UnixMilli(r.Timestamp).UTC(),
			NetWorth: nw.InexactFloat64(),
			Balance:  bal.InexactFloat64(),
		}
	}
	return out, nil
}

// SaveMeta stores a key-value pair in game metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO game_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM game_meta WHERE key = ?", key)
	return value, err
}

// Source is the part of the game store the journal reads from.
type Source interface {
	TransactionsSince(cursor int) ([]model.Transaction, int)
	NetWorth() float64
	Player() model.Player
	Now() time.Time
}

// Journal copies new store transactions into the database.
type Journal struct {
	db     *DB
	src    Source
	cursor int
}

// NewJournal starts journaling src from its first transaction.
func NewJournal(db *DB, src Source) *Journal {
	return &Journal{db: db, src: src}
}

// Flush writes every transaction appended since the last flush and
// records a net worth sample. Not safe for concurrent use.
func (j *Journal) Flush() error {
	txs, next := j.src.TransactionsSince(j.cursor)
	if err := j.db.RecordTransactions(txs); err != nil {
		return fmt.Errorf("journal transactions: %w", err)
	}
	j.cursor = next

	now := j.src.Now()
	if err := j.db.RecordNetWorth(now, j.src.NetWorth(), j.src.Player().Balance); err != nil {
		return fmt.Errorf("journal net worth: %w", err)
	}
	if err := j.db.SaveMeta("last_flush", now.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("journal meta: %w", err)
	}

	slog.Debug("ledger flushed", "transactions", len(txs), "cursor", next)
	return nil
}
