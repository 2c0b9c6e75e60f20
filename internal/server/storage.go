package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	dbPingTimeout     = 5 * time.Second
	dbMaxOpenConns    = 25
	dbMaxIdleConns    = 25
	dbConnMaxLifetime = 5 * time.Minute
)

// Seams for tests.
var (
	driverName         = "pgx"
	newPostgresManager = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
)

// Storage bundles the repository manager with the handles it needs.
// DB is nil when running in memory.
type Storage struct {
	DB      *sql.DB
	Manager repomanager.RepositoryManager
	Tx      dbx.Transactor
}

// DBTX returns the pool as a dbx.DBTX, or nil in memory mode.
func (s *Storage) DBTX() dbx.DBTX {
	if s.DB == nil {
		return nil
	}
	return s.DB
}

func (s *Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// OpenStorage connects to PostgreSQL and applies migrations. An empty dsn
// selects process-memory storage, which loses everything on exit.
func OpenStorage(ctx context.Context, dsn string, l logging.Logger) (*Storage, error) {
	if dsn == "" {
		l.Warn(ctx, "no database DSN configured, using in-memory storage")
		return &Storage{
			Manager: repomanager.NewInMemoryRepositoryManager(),
			Tx:      dbx.NoTx{},
		}, nil
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	m := newPostgresManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	l.Info(ctx, "database connection successful")
	return &Storage{DB: db, Manager: m, Tx: dbx.SQLTransactor{DB: db}}, nil
}
