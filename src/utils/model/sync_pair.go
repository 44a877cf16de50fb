package model

const TableSyncPair = "sync_pairs"

// Directional pair of tokens that may be kept in parity
type SyncPair struct {
	PrimaryToken   string `gorm:"primaryKey" json:"primary_token"`
	SecondaryToken string `gorm:"primaryKey" json:"secondary_token"`
	Enabled        bool   `json:"enabled"`
	ConversionRate int64  `json:"conversion_rate"`

	// Block height of the last successful sync or of the last reconfiguration
	LastSyncBlock int64 `json:"last_sync_block"`
}

func (SyncPair) TableName() string {
	return TableSyncPair
}
