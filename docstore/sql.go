package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// dialect captures the few places where SQLite and PostgreSQL differ.
type dialect struct {
	name        string
	docType     string
	seqType     string
	field       func(field string) string
	bind        func(n int) string
	isDuplicate func(err error) bool
}

var sqliteDialect = dialect{
	name:    "sqlite",
	docType: "TEXT",
	seqType: "INTEGER PRIMARY KEY AUTOINCREMENT",
	field: func(field string) string {
		return "json_extract(doc, '$." + field + "')"
	},
	bind: func(int) string { return "?" },
	isDuplicate: func(err error) bool {
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

var postgresDialect = dialect{
	name:    "postgres",
	docType: "JSONB",
	seqType: "BIGSERIAL PRIMARY KEY",
	field: func(field string) string {
		return "(doc->>'" + field + "')"
	},
	bind: func(n int) string { return fmt.Sprintf("$%d", n) },
	isDuplicate: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505"
	},
}

// SQLDriver keeps each collection in its own table of (seq, id, doc) rows.
// seq preserves insertion order for All.
type SQLDriver struct {
	db *sql.DB
	d  dialect
}

// OpenSQLite opens (or creates) the SQLite database at path, ensuring the
// data directory exists.
func OpenSQLite(path string) (*SQLDriver, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while a writer holds the lock; the busy
	// timeout makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	return &SQLDriver{db: db, d: sqliteDialect}, nil
}

// OpenPostgres opens a PostgreSQL pool through pgx's database/sql adapter.
func OpenPostgres(dsn string) (*SQLDriver, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return &SQLDriver{db: db, d: postgresDialect}, nil
}

func (s *SQLDriver) Name() string { return s.d.name }

func (s *SQLDriver) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLDriver) Close() error {
	return s.db.Close()
}

func (s *SQLDriver) Ensure(ctx context.Context, coll string, unique []string) error {
	if err := checkIdent("collection", coll); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    seq %s,
    id TEXT NOT NULL UNIQUE,
    doc %s NOT NULL
)`, coll, s.d.seqType, s.d.docType))
	if err != nil {
		return fmt.Errorf("create %s: %w", coll, err)
	}
	for _, field := range unique {
		if err := checkIdent("field", field); err != nil {
			return err
		}
		stmt := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_%s_uniq ON %s (%s)`,
			coll, strings.ToLower(field), coll, s.d.field(field))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("index %s.%s: %w", coll, field, err)
		}
	}
	return nil
}

func (s *SQLDriver) All(ctx context.Context, coll string) ([][]byte, error) {
	if err := checkIdent("collection", coll); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM `+coll+` ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return scanDocs(rows)
}

func (s *SQLDriver) Get(ctx context.Context, coll, id string) ([]byte, error) {
	if err := checkIdent("collection", coll); err != nil {
		return nil, err
	}
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM `+coll+` WHERE id = `+s.d.bind(1), id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLDriver) Find(ctx context.Context, coll, field, value string) ([][]byte, error) {
	if err := checkIdent("collection", coll); err != nil {
		return nil, err
	}
	if err := checkIdent("field", field); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE %s = %s ORDER BY seq`, coll, s.d.field(field), s.d.bind(1))
	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, err
	}
	return scanDocs(rows)
}

func (s *SQLDriver) Insert(ctx context.Context, coll, id string, doc []byte) error {
	if err := checkIdent("collection", coll); err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES (%s, %s)`, coll, s.d.bind(1), s.d.bind(2))
	if _, err := s.db.ExecContext(ctx, query, id, string(doc)); err != nil {
		if s.d.isDuplicate(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return err
	}
	return nil
}

func (s *SQLDriver) Replace(ctx context.Context, coll, id string, doc []byte) (bool, error) {
	if err := checkIdent("collection", coll); err != nil {
		return false, err
	}
	query := fmt.Sprintf(`UPDATE %s SET doc = %s WHERE id = %s`, coll, s.d.bind(1), s.d.bind(2))
	res, err := s.db.ExecContext(ctx, query, string(doc), id)
	if err != nil {
		if s.d.isDuplicate(err) {
			return false, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLDriver) Delete(ctx context.Context, coll, id string) (bool, error) {
	if err := checkIdent("collection", coll); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+coll+` WHERE id = `+s.d.bind(1), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanDocs(rows *sql.Rows) ([][]byte, error) {
	defer rows.Close()
	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
