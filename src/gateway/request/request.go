package request

type RegisterToken struct {
	TokenId         string `json:"token_id"`
	ContractAddress string `json:"contract_address"`
}

type UpdateTokenStatus struct {
	Active *bool `json:"active"`
}

type ConfigurePair struct {
	PrimaryToken   string `json:"primary_token"`
	SecondaryToken string `json:"secondary_token"`
	Enabled        *bool  `json:"enabled"`
	ConversionRate int64  `json:"conversion_rate"`
}

type InitiateSync struct {
	SyncId         string `json:"sync_id"`
	PrimaryToken   string `json:"primary_token"`
	SecondaryToken string `json:"secondary_token"`
	Amount         int64  `json:"amount"`
}

type TransferOwnership struct {
	NewOwner string `json:"new_owner"`
}
