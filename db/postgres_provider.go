package db

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
)

// PostgresProvider implements DatabaseProvider over a single key-value
// table. The primary key on the key column is the uniqueness constraint
// that backs PutIfAbsent, so conflicting writers race inside the database
// rather than in this process.
type PostgresProvider struct {
	once sync.Once
	db   *sql.DB
}

// NewPostgresProvider connects with a lib/pq DSN and ensures the kv table
// exists.
func NewPostgresProvider(dsn string) (*PostgresProvider, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS safetx_kv (
		key   bytea PRIMARY KEY,
		value bytea NOT NULL
	)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &PostgresProvider{db: db}, nil
}

func (p *PostgresProvider) Get(key []byte) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(`SELECT value FROM safetx_kv WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (p *PostgresProvider) Put(key, value []byte) error {
	_, err := p.db.Exec(
		`INSERT INTO safetx_kv (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	return err
}

func (p *PostgresProvider) PutIfAbsent(key, value []byte) (bool, error) {
	res, err := p.db.Exec(
		`INSERT INTO safetx_kv (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO NOTHING`,
		key, value)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (p *PostgresProvider) Has(key []byte) (bool, error) {
	var exists bool
	err := p.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM safetx_kv WHERE key = $1)`, key).Scan(&exists)
	return exists, err
}

func (p *PostgresProvider) Delete(key []byte) error {
	_, err := p.db.Exec(`DELETE FROM safetx_kv WHERE key = $1`, key)
	return err
}

func (p *PostgresProvider) Close() error {
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

func (p *PostgresProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	var rows *sql.Rows
	var err error

	if end := prefixSuccessor(prefix); end != nil {
		rows, err = p.db.Query(
			`SELECT key, value FROM safetx_kv WHERE key >= $1 AND key < $2 ORDER BY key`,
			prefix, end)
	} else {
		rows, err = p.db.Query(
			`SELECT key, value FROM safetx_kv WHERE key >= $1 ORDER BY key`,
			prefix)
	}
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if !callback(key, value) {
			break
		}
	}
	return rows.Err()
}

var _ IterableProvider = (*PostgresProvider)(nil)
