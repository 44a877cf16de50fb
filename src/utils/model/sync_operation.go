package model

const TableSyncOperation = "sync_operations"

// Max length of a sync operation identifier
const MaxSyncIdLength = 64

// In-flight sync. Removed from the table once resolved.
type SyncOperation struct {
	SyncId         string     `gorm:"primaryKey" json:"sync_id"`
	Initiator      string     `json:"initiator"`
	PrimaryToken   string     `json:"primary_token"`
	SecondaryToken string     `json:"secondary_token"`
	Amount         int64      `json:"amount"`
	Status         SyncStatus `json:"status"`
	InitiatedAt    int64      `json:"initiated_at"`

	// Block height after which the sweeper cancels the operation, 0 means never
	ExpiresAt int64 `json:"expires_at"`
}

func (SyncOperation) TableName() string {
	return TableSyncOperation
}
