package model

const TableSyncState = "sync_state"

type SyncState struct {
	Name SyncedComponent `gorm:"primaryKey"`

	// Height of the last block observed by the component
	FinishedBlockHeight int64
}

func (SyncState) TableName() string {
	return TableSyncState
}
