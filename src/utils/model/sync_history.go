package model

import (
	"github.com/hamba/avro"
)

const TableSyncHistory = "sync_history"

// Resolved by the sweeper, not by a caller
const ResolvedByExpiry = "expiry"

// Terminal outcome of a sync operation. Append only.
type SyncHistory struct {
	SyncId          string     `gorm:"primaryKey" json:"sync_id" avro:"sync_id"`
	Initiator       string     `json:"initiator" avro:"initiator"`
	PrimaryToken    string     `json:"primary_token" avro:"primary_token"`
	SecondaryToken  string     `json:"secondary_token" avro:"secondary_token"`
	Amount          int64      `json:"amount" avro:"amount"`
	ConvertedAmount int64      `json:"converted_amount" avro:"converted_amount"`
	Status          SyncStatus `json:"status" avro:"status"`
	CompletedAt     int64      `json:"completed_at" avro:"completed_at"`
	ResolvedBy      string     `json:"resolved_by" avro:"resolved_by"`
}

// Encoding of history records published to other services
var SyncHistorySchema = avro.MustParse(`{
	"type": "record",
	"name": "SyncHistory",
	"namespace": "cc.warp.token_syncer",
	"fields": [
		{"name": "sync_id", "type": "string"},
		{"name": "initiator", "type": "string"},
		{"name": "primary_token", "type": "string"},
		{"name": "secondary_token", "type": "string"},
		{"name": "amount", "type": "long"},
		{"name": "converted_amount", "type": "long"},
		{"name": "status", "type": "string"},
		{"name": "completed_at", "type": "long"},
		{"name": "resolved_by", "type": "string"}
	]
}`)

func (SyncHistory) TableName() string {
	return TableSyncHistory
}

func (self *SyncHistory) MarshalBinary() (data []byte, err error) {
	return avro.Marshal(SyncHistorySchema, self)
}

func (self *SyncHistory) UnmarshalBinary(data []byte) error {
	return avro.Unmarshal(SyncHistorySchema, data, self)
}

func NewSyncHistory(op *SyncOperation, status SyncStatus, height int64, resolvedBy string) *SyncHistory {
	return &SyncHistory{
		SyncId:         op.SyncId,
		Initiator:      op.Initiator,
		PrimaryToken:   op.PrimaryToken,
		SecondaryToken: op.SecondaryToken,
		Amount:         op.Amount,
		Status:         status,
		CompletedAt:    height,
		ResolvedBy:     resolvedBy,
	}
}
