// Package docstore stores JSON documents in named collections. A single
// Driver interface fronts SQLite, PostgreSQL, MongoDB and DynamoDB so the
// content layer never sees driver-specific errors or query shapes.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	// ErrMissing is returned by Get when no document has the requested id.
	ErrMissing = errors.New("docstore: document not found")
	// ErrDuplicate is returned when an insert or replace violates the
	// primary key or a unique index.
	ErrDuplicate = errors.New("docstore: duplicate key")
)

// Driver is a minimal document store. Documents are JSON objects keyed by
// a string id; field lookups compare a top-level string field for equality.
type Driver interface {
	// Name reports the driver kind ("sqlite", "postgres", "mongodb", "dynamodb").
	Name() string
	Ping(ctx context.Context) error
	// Ensure creates the collection if needed, plus a unique index for each
	// of the given fields where the backend supports one.
	Ensure(ctx context.Context, coll string, unique []string) error
	All(ctx context.Context, coll string) ([][]byte, error)
	Get(ctx context.Context, coll, id string) ([]byte, error)
	Find(ctx context.Context, coll, field, value string) ([][]byte, error)
	Insert(ctx context.Context, coll, id string, doc []byte) error
	// Replace overwrites an existing document and reports whether one matched.
	Replace(ctx context.Context, coll, id string, doc []byte) (bool, error)
	// Delete removes a document and reports whether one existed.
	Delete(ctx context.Context, coll, id string) (bool, error)
	Close() error
}

// Config selects and configures a driver.
type Config struct {
	Driver   string // sqlite (default), postgres, mongodb, dynamodb
	DSN      string // file path, postgres URL or mongodb URI
	Database string // mongo database name, dynamodb table prefix

	Region   string // dynamodb region
	Endpoint string // dynamodb endpoint override (local testing)

	ConnectRetries int           // extra ping attempts after the first (default 4)
	RetryDelay     time.Duration // initial backoff, doubled per attempt (default 500ms)
}

func (c *Config) setDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.DSN == "" && c.Driver == "sqlite" {
		c.DSN = "data/reviews.db"
	}
	if c.Database == "" {
		c.Database = "researcher-db"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.ConnectRetries == 0 {
		c.ConnectRetries = 4
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
}

// Open creates the configured driver and waits until it answers a ping,
// retrying with exponential backoff.
func Open(ctx context.Context, cfg Config) (Driver, error) {
	cfg.setDefaults()

	var (
		d   Driver
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		d, err = OpenSQLite(cfg.DSN)
	case "postgres":
		d, err = OpenPostgres(cfg.DSN)
	case "mongodb":
		d, err = OpenMongo(ctx, cfg.DSN, cfg.Database)
	case "dynamodb":
		d, err = OpenDynamo(ctx, cfg.Region, cfg.Endpoint, cfg.Database)
	default:
		return nil, fmt.Errorf("docstore: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: open %s: %w", cfg.Driver, err)
	}

	if err := pingWithRetry(ctx, d, cfg.ConnectRetries, cfg.RetryDelay); err != nil {
		d.Close()
		return nil, fmt.Errorf("docstore: ping %s: %w", cfg.Driver, err)
	}
	return d, nil
}

func pingWithRetry(ctx context.Context, d Driver, retries int, delay time.Duration) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = d.Ping(ctx); err == nil {
			return nil
		}
		if attempt >= retries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// checkIdent guards collection and field names that are spliced into
// queries.
func checkIdent(kind, name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("docstore: invalid %s name %q", kind, name)
	}
	return nil
}
