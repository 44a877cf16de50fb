package synchronizer

import (
	"context"
	"errors"
	"strings"

	"github.com/warp-contracts/token-syncer/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

func validateTokenId(tokenId string) error {
	if tokenId == "" {
		return newError(CodeInvalidInput, "empty token id")
	}
	if len(tokenId) > model.MaxTokenIdLength {
		return newError(CodeInvalidInput, "token id longer than %d characters", model.MaxTokenIdLength)
	}
	return nil
}

// EVM addresses are stored checksummed, other identities as given
func normalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if common.IsHexAddress(address) {
		return common.HexToAddress(address).Hex()
	}
	return address
}

func getTokenContract(tx *gorm.DB, tokenId string) (out *model.TokenContract, err error) {
	out = new(model.TokenContract)
	err = tx.Where("token_id = ?", tokenId).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return
}

// Adds a token backed by the given contract. The token starts active.
func (self *Synchronizer) RegisterTokenContract(ctx context.Context, caller, tokenId, contractAddress string) (err error) {
	defer func() { self.onError(err) }()

	self.mtx.Lock()
	defer self.mtx.Unlock()

	err = self.authorize(ctx, caller)
	if err != nil {
		return
	}

	err = validateTokenId(tokenId)
	if err != nil {
		return
	}

	contractAddress = normalizeAddress(contractAddress)
	if contractAddress == "" {
		return newError(CodeInvalidInput, "empty contract address")
	}

	err = self.transaction(ctx, func(tx *gorm.DB) error {
		existing, err := getTokenContract(tx, tokenId)
		if err != nil {
			return err
		}
		if existing != nil {
			return newError(CodeTokenAlreadyRegistered, "token %s", tokenId)
		}

		return tx.Create(&model.TokenContract{
			TokenId:         tokenId,
			ContractAddress: contractAddress,
			Active:          true,
		}).Error
	})
	if err != nil {
		return
	}

	self.monitor.GetReport().Synchronizer.State.TokensRegistered.Inc()
	self.log.WithField("token_id", tokenId).
		WithField("contract", contractAddress).
		WithField("caller", caller).
		Info("Token registered")
	return
}

// Activates or deactivates a token, other fields stay untouched
func (self *Synchronizer) UpdateTokenContractStatus(ctx context.Context, caller, tokenId string, active bool) (err error) {
	defer func() { self.onError(err) }()

	self.mtx.Lock()
	defer self.mtx.Unlock()

	err = self.authorize(ctx, caller)
	if err != nil {
		return
	}

	err = self.transaction(ctx, func(tx *gorm.DB) error {
		existing, err := getTokenContract(tx, tokenId)
		if err != nil {
			return err
		}
		if existing == nil {
			return newError(CodeTokenNotRegistered, "token %s", tokenId)
		}

		return tx.Model(&model.TokenContract{}).
			Where("token_id = ?", tokenId).
			UpdateColumn("active", active).
			Error
	})
	if err != nil {
		return
	}

	self.log.WithField("token_id", tokenId).
		WithField("active", active).
		WithField("caller", caller).
		Info("Token status updated")
	return
}

// Nil if the token isn't registered
func (self *Synchronizer) GetTokenContract(ctx context.Context, tokenId string) (*model.TokenContract, error) {
	return getTokenContract(self.db.WithContext(ctx), tokenId)
}
