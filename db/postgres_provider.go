package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/mezonai/currency/logx"
)

const (
	postgresMaxRetries = 5
	postgresRetryDelay = 3 * time.Second

	createKVTableSQL = `CREATE TABLE IF NOT EXISTS ledger_kv (
	key   BYTEA PRIMARY KEY,
	value BYTEA NOT NULL
)`
	upsertKVSQL = `INSERT INTO ledger_kv (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
)

// PostgresProvider implements IterableProvider on a single key/value table.
type PostgresProvider struct {
	db *sql.DB
}

// NewPostgresProvider connects to databaseURL, retrying a few times while the server comes
// up, and makes sure the table exists.
func NewPostgresProvider(databaseURL string) (*PostgresProvider, error) {
	var lastErr error
	for attempt := 0; attempt < postgresMaxRetries; attempt++ {
		if attempt > 0 {
			logx.Warn("POSTGRES", fmt.Sprintf("Retrying connection (attempt %d/%d) after error: %v", attempt+1, postgresMaxRetries, lastErr))
			time.Sleep(postgresRetryDelay)
		}

		conn, err := sql.Open("postgres", databaseURL)
		if err != nil {
			lastErr = fmt.Errorf("failed to open database connection: %w", err)
			continue
		}
		if err := conn.Ping(); err != nil {
			_ = conn.Close()
			lastErr = fmt.Errorf("failed to ping database: %w", err)
			continue
		}
		if _, err := conn.Exec(createKVTableSQL); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to create ledger_kv table: %w", err)
		}
		logx.Info("POSTGRES", "Connection established")
		return &PostgresProvider{db: conn}, nil
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", postgresMaxRetries, lastErr)
}

func (p *PostgresProvider) Get(key []byte) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(`SELECT value FROM ledger_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return value, err
}

func (p *PostgresProvider) Put(key, value []byte) error {
	_, err := p.db.Exec(upsertKVSQL, key, value)
	return err
}

func (p *PostgresProvider) Delete(key []byte) error {
	_, err := p.db.Exec(`DELETE FROM ledger_kv WHERE key = $1`, key)
	return err
}

func (p *PostgresProvider) Has(key []byte) (bool, error) {
	var found bool
	err := p.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM ledger_kv WHERE key = $1)`, key).Scan(&found)
	return found, err
}

func (p *PostgresProvider) Close() error {
	return p.db.Close()
}

func (p *PostgresProvider) Batch() DatabaseBatch {
	return &PostgresBatch{db: p.db}
}

// IteratePrefix walks keys in byte order. The prefix match is done on the client so binary
// keys need no escaping.
func (p *PostgresProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	rows, err := p.db.Query(`SELECT key, value FROM ledger_kv WHERE key >= $1 ORDER BY key`, prefix)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if len(key) < len(prefix) || string(key[:len(prefix)]) != string(prefix) {
			break
		}
		if !callback(key, value) {
			return nil
		}
	}
	return rows.Err()
}

// PostgresBatch queues writes and applies them in one SQL transaction.
type PostgresBatch struct {
	db  *sql.DB
	ops []batchOp
}

func (b *PostgresBatch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

func (b *PostgresBatch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: append([]byte(nil), key...), delete: true})
}

func (b *PostgresBatch) Write() error {
	if len(b.ops) == 0 {
		return nil
	}
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, op := range b.ops {
		if op.delete {
			_, err = tx.Exec(`DELETE FROM ledger_kv WHERE key = $1`, op.key)
		} else {
			_, err = tx.Exec(upsertKVSQL, op.key, op.value)
		}
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (b *PostgresBatch) Reset() {
	b.ops = nil
}

func (b *PostgresBatch) Close() error {
	b.ops = nil
	return nil
}
