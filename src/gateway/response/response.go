package response

import (
	"github.com/warp-contracts/token-syncer/src/utils/model"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type OperatorStatus struct {
	Operator   string `json:"operator"`
	IsOperator bool   `json:"is_operator"`
}

type PendingSyncs struct {
	Syncs []*model.SyncOperation `json:"syncs"`
}

type History struct {
	History []*model.SyncHistory `json:"history"`
}
