package model

import (
	"database/sql/driver"
	"fmt"
)

type SyncStatus string

const (
	// Active operation states
	SyncStatusPending    SyncStatus = "PENDING"
	SyncStatusProcessing SyncStatus = "PROCESSING"

	// Terminal states, only present in history
	SyncStatusCompleted SyncStatus = "COMPLETED"
	SyncStatusCancelled SyncStatus = "CANCELLED"
)

func (self *SyncStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*self = SyncStatus(v)
	case string:
		*self = SyncStatus(v)
	default:
		return fmt.Errorf("unsupported sync status type: %T", value)
	}
	return nil
}

func (self SyncStatus) Value() (driver.Value, error) {
	return string(self), nil
}
