package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeManager struct {
	migrated bool
	err      error
}

func (f *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	f.migrated = true
	return f.err
}

func (f *fakeManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func useSQLMock(t *testing.T, m *fakeManager) sqlmock.Sqlmock {
	t.Helper()
	dsn := "accounts_" + t.Name()
	db, mock, err := sqlmock.NewWithDSN(dsn, sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	origDriver, origManager := driverName, newPostgresManager
	driverName = "sqlmock"
	newPostgresManager = func() repomanager.RepositoryManager { return m }
	t.Cleanup(func() {
		driverName, newPostgresManager = origDriver, origManager
		_ = db.Close()
	})
	return mock
}

func TestOpenStorage_Memory(t *testing.T) {
	st, err := OpenStorage(context.Background(), "", logging.Nop{})
	require.NoError(t, err)

	assert.Nil(t, st.DB)
	assert.Nil(t, st.DBTX())
	assert.IsType(t, &repomanager.InMemoryRepositoryManager{}, st.Manager)
	assert.IsType(t, dbx.NoTx{}, st.Tx)
	assert.NoError(t, st.Close())
}

func TestOpenStorage_Postgres(t *testing.T) {
	m := &fakeManager{}
	mock := useSQLMock(t, m)
	mock.ExpectPing()

	st, err := OpenStorage(context.Background(), "accounts_"+t.Name(), logging.Nop{})
	require.NoError(t, err)

	assert.True(t, m.migrated)
	assert.NotNil(t, st.DB)
	assert.NotNil(t, st.DBTX())
	assert.IsType(t, dbx.SQLTransactor{}, st.Tx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenStorage_PingFails(t *testing.T) {
	m := &fakeManager{}
	mock := useSQLMock(t, m)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	_, err := OpenStorage(context.Background(), "accounts_"+t.Name(), logging.Nop{})
	assert.ErrorContains(t, err, "failed to ping database")
	assert.False(t, m.migrated)
}

func TestOpenStorage_MigrationFails(t *testing.T) {
	m := &fakeManager{err: errors.New("bad migration")}
	mock := useSQLMock(t, m)
	mock.ExpectPing()

	_, err := OpenStorage(context.Background(), "accounts_"+t.Name(), logging.Nop{})
	assert.ErrorContains(t, err, "failed to run migrations")
}
