package model

const (
	TableSyncOwner     = "sync_owner"
	TableSyncOperators = "sync_operators"
)

type SyncOwner struct {
	// Id always equals one
	Id    int `gorm:"primaryKey"`
	Owner string
}

func (SyncOwner) TableName() string {
	return TableSyncOwner
}

type SyncOperator struct {
	Operator string `gorm:"primaryKey"`
}

func (SyncOperator) TableName() string {
	return TableSyncOperators
}
