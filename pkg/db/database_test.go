package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteInMemory(t *testing.T) {
	gdb, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	require.NoError(t, Ping(context.Background(), gdb))

	var one int
	require.NoError(t, gdb.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestOpenRejectsBadInput(t *testing.T) {
	_, err := Open(context.Background(), DriverSQLite, "")
	require.Error(t, err)

	_, err = Open(context.Background(), "mysql", "dsn")
	require.ErrorContains(t, err, "unsupported")
}
