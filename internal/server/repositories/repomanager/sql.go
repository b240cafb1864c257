// Package repomanager provides the RepositoryManager for the supported SQL
// drivers, wiring together repository constructors and database migrations
// (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/server/migrations"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/users"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// dialect maps a database/sql driver name to its goose dialect and the
// migrations directory holding its SQL.
type dialect struct {
	goose string
	dir   string
}

var dialects = map[string]dialect{
	"pgx":    {goose: "pgx", dir: "postgres"},
	"mysql":  {goose: "mysql", dir: "mysql"},
	"sqlite": {goose: "sqlite3", dir: "sqlite"},
}

// SQLRepositoryManager vends sqlx-backed repository implementations and
// exposes a schema migration hook for its driver.
type SQLRepositoryManager struct {
	driver  string
	dialect dialect
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

// Posts returns a posts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Posts(db dbx.DBTX) posts.Repository {
	return posts.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs the
// driver's directory against the provided database connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect.goose); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, m.dialect.dir); err != nil {
		return err
	}
	return nil
}

// Driver returns the database/sql driver name the manager was built for.
func (m *SQLRepositoryManager) Driver() string { return m.driver }

// NewSQLRepositoryManager constructs a RepositoryManager for driver, one of
// "pgx", "mysql" or "sqlite".
func NewSQLRepositoryManager(driver string) (*SQLRepositoryManager, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported database driver %q", common.ErrKeyMisconfiguration, driver)
	}
	return &SQLRepositoryManager{driver: driver, dialect: d}, nil
}

// Open connects to the database and verifies it with a ping. Connection
// failures are reported as common.ErrStorageUnavailable.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}
	return db, nil
}
