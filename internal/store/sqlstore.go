package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // Postgres driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/dbsmedya/refdump/internal/config"
	"github.com/dbsmedya/refdump/internal/record"
	"github.com/dbsmedya/refdump/internal/sqlutil"
)

// SQLStore reads records from a two-column SQL table mapping record
// identifiers to their JSON content.
type SQLStore struct {
	db         *sql.DB
	dialect    sqlutil.Dialect
	table      string
	pathCol    string
	contentCol string
}

// OpenSQL connects to the configured SQL backend and verifies the
// connection with a ping.
func OpenSQL(ctx context.Context, cfg *config.StoreConfig) (*SQLStore, error) {
	var driverName string
	var dialect sqlutil.Dialect
	switch cfg.Driver {
	case "mysql":
		driverName, dialect = "mysql", sqlutil.DialectMySQL
	case "postgres":
		driverName, dialect = "postgres", sqlutil.DialectPostgres
	case "sqlite":
		driverName, dialect = "sqlite3", sqlutil.DialectSQLite
	default:
		return nil, fmt.Errorf("unknown SQL driver %q", cfg.Driver)
	}

	// Identifiers reach query text directly, so validate them up front.
	table, err := dialect.QuoteIdentifierSafe(cfg.Table)
	if err != nil {
		return nil, fmt.Errorf("store table: %w", err)
	}
	pathCol, err := dialect.QuoteIdentifierSafe(cfg.PathColumn)
	if err != nil {
		return nil, fmt.Errorf("store path column: %w", err)
	}
	contentCol, err := dialect.QuoteIdentifierSafe(cfg.ContentColumn)
	if err != nil {
		return nil, fmt.Errorf("store content column: %w", err)
	}

	db, err := connectWithRetry(ctx, driverName, cfg.DSN)
	if err != nil {
		return nil, err
	}

	return &SQLStore{
		db:         db,
		dialect:    dialect,
		table:      table,
		pathCol:    pathCol,
		contentCol: contentCol,
	}, nil
}

// NewSQLStore wraps an existing connection. Used by tests with sqlmock.
func NewSQLStore(db *sql.DB, dialect sqlutil.Dialect, table, pathCol, contentCol string) *SQLStore {
	return &SQLStore{
		db:         db,
		dialect:    dialect,
		table:      dialect.QuoteIdentifier(table),
		pathCol:    dialect.QuoteIdentifier(pathCol),
		contentCol: dialect.QuoteIdentifier(contentCol),
	}
}

// connectWithRetry attempts to connect with exponential backoff.
func connectWithRetry(ctx context.Context, driverName, dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open(driverName, dsn)
		if err == nil {
			if pingErr := db.PingContext(ctx); pingErr == nil {
				db.SetConnMaxLifetime(10 * time.Minute)
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

// Exists reports whether the table holds a row for the candidate.
func (s *SQLStore) Exists(ctx context.Context, candidate string) (bool, error) {
	query := fmt.Sprintf(
		"SELECT 1 FROM %s WHERE %s = %s LIMIT 1",
		s.table, s.pathCol, s.dialect.Placeholder(1),
	)

	var one int
	err := s.db.QueryRowContext(ctx, query, candidate).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("existence check for %s: %w", candidate, err)
	}
	return true, nil
}

// Fetch reads and decodes the record at path.
func (s *SQLStore) Fetch(ctx context.Context, path string) (interface{}, error) {
	raw, err := s.FetchRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	content, err := record.DecodeContent(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return content, nil
}

// FetchRaw reads the stored bytes for path.
func (s *SQLStore) FetchRaw(ctx context.Context, path string) ([]byte, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = %s",
		s.contentCol, s.table, s.pathCol, s.dialect.Placeholder(1),
	)

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	return raw, nil
}

// ListAll returns every record identifier ordered by path.
func (s *SQLStore) ListAll(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", s.pathCol, s.table, s.pathCol)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list identifiers: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan identifier: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// Put upserts raw record bytes under a path.
func (s *SQLStore) Put(ctx context.Context, path string, raw []byte) error {
	var query string
	switch s.dialect {
	case sqlutil.DialectPostgres:
		query = fmt.Sprintf(
			"INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s",
			s.table, s.pathCol, s.contentCol, s.pathCol, s.contentCol, s.contentCol,
		)
	default:
		// MySQL and SQLite both accept REPLACE INTO.
		query = fmt.Sprintf(
			"REPLACE INTO %s (%s, %s) VALUES (?, ?)",
			s.table, s.pathCol, s.contentCol,
		)
	}

	if _, err := s.db.ExecContext(ctx, query, path, raw); err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}
	return nil
}

// EnsureSchema creates the record table if it does not exist. Used when the
// store is an index destination.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	var ddl string
	switch s.dialect {
	case sqlutil.DialectMySQL:
		ddl = fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (%s VARCHAR(255) PRIMARY KEY, %s MEDIUMTEXT NOT NULL)",
			s.table, s.pathCol, s.contentCol,
		)
	default:
		ddl = fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY, %s TEXT NOT NULL)",
			s.table, s.pathCol, s.contentCol,
		)
	}

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
