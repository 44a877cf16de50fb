package model

const TableTokenContract = "token_contracts"

// Max length of a token identifier
const MaxTokenIdLength = 32

// External contract backing a token identifier. Never deleted, only deactivated.
type TokenContract struct {
	TokenId         string `gorm:"primaryKey" json:"token_id"`
	ContractAddress string `json:"contract_address"`
	Active          bool   `json:"active"`
	LastSyncHeight  int64  `json:"last_sync_height"`
}

func (TokenContract) TableName() string {
	return TableTokenContract
}
