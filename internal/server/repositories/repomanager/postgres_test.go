package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accountkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestManagers_SatisfyInterface(t *testing.T) {
	var _ RepositoryManager = NewPostgresRepositoryManager()
	var _ RepositoryManager = NewInMemoryRepositoryManager()
}

func TestPostgres_UsersBoundToHandle(t *testing.T) {
	db := newDB(t)

	r := NewPostgresRepositoryManager().Users(db)
	require.NotNil(t, r)
	_, ok := r.(*users.PostgresRepository)
	assert.True(t, ok)
}

func TestInMemory_SharesOneStore(t *testing.T) {
	m := NewInMemoryRepositoryManager()

	assert.Same(t, m.Users(nil), m.Users(newDB(t)))
	assert.NoError(t, m.RunMigrations(context.Background(), nil))
}

func TestRunMigrations_Success(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	assert.EqualError(t, err, "boom")
}

func TestMigrations_Embedded(t *testing.T) {
	b, err := migrations.Migrations.ReadFile("00001_create_users.sql")
	require.NoError(t, err)

	ddl := string(b)
	assert.Contains(t, ddl, "-- +goose Up")
	assert.Contains(t, ddl, "CONSTRAINT users_username_key UNIQUE (username)")
	assert.Contains(t, ddl, "CONSTRAINT users_email_key UNIQUE (email)")
}
