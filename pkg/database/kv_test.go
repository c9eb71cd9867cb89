package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKV_RoundTrip(t *testing.T) {
	db, err := ConnectDB(DriverSQLite, filepath.Join(t.TempDir(), "nested", "stm.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, EnsureSchema(db))
	require.NoError(t, EnsureSchema(db), "schema creation is idempotent")

	kv := NewKV(db, "student-time-manager:v1")

	data, err := kv.Load()
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, kv.Save([]byte(`{"tasks":[]}`)))
	require.NoError(t, kv.Save([]byte(`{"tasks":[1]}`)))

	data, err = kv.Load()
	require.NoError(t, err)
	assert.Equal(t, `{"tasks":[1]}`, string(data))

	other := NewKV(db, "other")
	data, err = other.Load()
	require.NoError(t, err)
	assert.Nil(t, data, "slots are independent")
}

func TestConnectDB_UnsupportedDriver(t *testing.T) {
	_, err := ConnectDB("oracle", "whatever")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestUpsertQuery(t *testing.T) {
	assert.Contains(t, upsertQuery(DriverMySQL), "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, upsertQuery(DriverSQLite), "ON CONFLICT (k)")
	assert.Contains(t, upsertQuery(DriverPostgres), "ON CONFLICT (k)")
}
