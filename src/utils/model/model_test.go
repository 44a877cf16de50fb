package model

import (
	"context"
	"testing"

	"github.com/warp-contracts/token-syncer/src/utils/config"

	"github.com/stretchr/testify/require"
)

func TestSyncStatusScan(t *testing.T) {
	var status SyncStatus
	require.Nil(t, status.Scan([]byte("PENDING")))
	require.Equal(t, SyncStatusPending, status)

	require.Nil(t, status.Scan("COMPLETED"))
	require.Equal(t, SyncStatusCompleted, status)

	require.Error(t, status.Scan(42))
}

func TestSyncHistoryAvro(t *testing.T) {
	op := &SyncOperation{
		SyncId:         "s1",
		Initiator:      "alice",
		PrimaryToken:   "A",
		SecondaryToken: "B",
		Amount:         10,
	}
	history := NewSyncHistory(op, SyncStatusCancelled, 42, ResolvedByExpiry)

	data, err := history.MarshalBinary()
	require.Nil(t, err)

	var decoded SyncHistory
	require.Nil(t, decoded.UnmarshalBinary(data))
	require.Equal(t, *history, decoded)
}

func TestMigrationsSqlite(t *testing.T) {
	conf, err := config.Load("")
	require.Nil(t, err)
	conf.Database.Driver = config.DatabaseDriverSqlite
	conf.Database.Path = ":memory:"

	db, err := NewConnection(context.Background(), conf, "test")
	require.Nil(t, err)
	defer func() {
		sqlDB, err := db.DB()
		require.Nil(t, err)
		require.Nil(t, sqlDB.Close())
	}()

	for _, table := range []string{TableTokenContract, TableSyncPair, TableSyncOperation, TableSyncHistory, TableSyncState} {
		require.True(t, db.Migrator().HasTable(table), table)
	}

	// Already applied
	n, err := MigrateDB(db, conf.Database.Driver)
	require.Nil(t, err)
	require.Equal(t, 0, n)

	// SQLite serializes transactions without an isolation level
	require.Nil(t, WriteTxOptions(db))
}
