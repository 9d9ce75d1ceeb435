package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorityx/priorityx/schema"
)

func newSQLiteStore(t *testing.T) (*CacheStoreImpl, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(movementTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl), path
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, validateTableName("movement_cache"))
	assert.NoError(t, validateTableName("_private"))
	assert.Error(t, validateTableName("1starts_with_digit"))
	assert.Error(t, validateTableName("drop table;--"))
	assert.Error(t, validateTableName(""))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`cache`", quoteTableName("cache", schema.MySQLBackend))
	assert.Equal(t, `"cache"`, quoteTableName("cache", schema.PostgreSQLBackend))
	assert.Equal(t, `"cache"`, quoteTableName("cache", schema.SQLiteBackend))
}

func TestPlaceholderAndUpsertDialects(t *testing.T) {
	mysqlStore := &CacheStoreImpl{tableName: "c", backend: schema.MySQLBackend}
	pgStore := &CacheStoreImpl{tableName: "c", backend: schema.PostgreSQLBackend}
	liteStore := &CacheStoreImpl{tableName: "c", backend: schema.SQLiteBackend}

	assert.Equal(t, "?", mysqlStore.getPlaceholder())
	assert.Equal(t, "$1", pgStore.getPlaceholder())
	assert.Equal(t, "?", liteStore.getPlaceholder())

	assert.Contains(t, mysqlStore.getUpsertQuery(), "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, pgStore.getUpsertQuery(), "ON CONFLICT")
	assert.Contains(t, liteStore.getUpsertQuery(), "INSERT OR REPLACE")
}

func TestNewCacheStoreRejectsBadTableName(t *testing.T) {
	_, err := NewCacheStore("bad name", schema.SQLiteBackend, filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, err)
}

func TestSQLiteRoundTrip(t *testing.T) {
	store, _ := newSQLiteStore(t)

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("k", []byte("v1"), 1, 100))
	value, version, ts, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(100), ts)

	// Overwrite replaces in place.
	require.NoError(t, store.Set("k", []byte("v2"), 2, 200))
	value, version, ts, err = store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(200), ts)

	require.NoError(t, store.Clear())
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSQLiteStatus(t *testing.T) {
	store, path := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, path, status.Location)
	assert.Zero(t, status.EntryCount)

	require.NoError(t, store.Set("a", []byte("x"), 1, 100))
	require.NoError(t, store.Set("b", []byte("y"), 1, 300))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.EntryCount)
	assert.Equal(t, int64(300), status.LastEntryTime.Unix())
	assert.Equal(t, int64(100), status.OldestEntryTime.Unix())
	assert.Positive(t, status.SizeBytes)
}

func TestNoneBackendIsNoOp(t *testing.T) {
	store, err := NewCacheStore(movementTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 100))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Clear())
	assert.NoError(t, store.Close())

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestNewCacheStoreUnsupportedBackend(t *testing.T) {
	_, err := NewCacheStore(movementTable, "redis", "")
	assert.Error(t, err)
}

func TestClearCacheSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(movementTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.(*CacheStoreImpl).Set("k", []byte("v"), 1, 1))
	require.NoError(t, store.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing an already-missing file is fine.
	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
}

func TestMigrateCacheSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	require.NoError(t, MigrateCache(schema.SQLiteBackend, path, -1))

	tableExists := func() bool {
		db, err := sql.Open("sqlite", path)
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", movementTable).Scan(&name)
		return err == nil
	}
	assert.True(t, tableExists())

	// Rolling back drops the table again.
	require.NoError(t, MigrateCache(schema.SQLiteBackend, path, 0))
	assert.False(t, tableExists())
}

func TestMigrateCacheNoneBackend(t *testing.T) {
	assert.Error(t, MigrateCache(schema.NoneBackend, "", -1))
}
