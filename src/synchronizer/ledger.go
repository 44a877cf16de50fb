package synchronizer

import (
	"context"
	"errors"

	"github.com/warp-contracts/token-syncer/src/utils/model"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

// Parameters of a new sync operation
type InitiateRequest struct {
	// Generated when empty
	SyncId string `json:"sync_id"`

	PrimaryToken   string `json:"primary_token"`
	SecondaryToken string `json:"secondary_token"`
	Amount         int64  `json:"amount"`
}

func getSyncOperation(tx *gorm.DB, syncId string) (out *model.SyncOperation, err error) {
	out = new(model.SyncOperation)
	err = tx.Where("sync_id = ?", syncId).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return
}

func getSyncHistory(tx *gorm.DB, syncId string) (out *model.SyncHistory, err error) {
	out = new(model.SyncHistory)
	err = tx.Where("sync_id = ?", syncId).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return
}

// Operation that may still be executed or cancelled
func getPendingSyncOperation(tx *gorm.DB, syncId string) (op *model.SyncOperation, err error) {
	op, err = getSyncOperation(tx, syncId)
	if err != nil {
		return
	}
	if op == nil {
		return nil, newError(CodeSyncFailed, "operation %s doesn't exist", syncId)
	}
	if op.Status != model.SyncStatusPending {
		return nil, newError(CodeSyncFailed, "operation %s is %s", syncId, op.Status)
	}
	return
}

// Opens a PENDING operation on an enabled pair. Identifiers are never reused.
func (self *Synchronizer) InitiateSync(ctx context.Context, caller string, req InitiateRequest) (op *model.SyncOperation, err error) {
	defer func() { self.onError(err) }()

	if caller == "" {
		err = newError(CodeInvalidInput, "unknown initiator")
		return
	}

	syncId := req.SyncId
	if syncId == "" {
		syncId = xid.New().String()
	}
	if len(syncId) > model.MaxSyncIdLength {
		err = newError(CodeInvalidInput, "sync id longer than %d characters", model.MaxSyncIdLength)
		return
	}

	if req.Amount <= 0 {
		err = newError(CodeInvalidAmount, "amount has to be positive, got %d", req.Amount)
		return
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()

	height, err := self.clock.Height(ctx)
	if err != nil {
		return
	}

	op = &model.SyncOperation{
		SyncId:         syncId,
		Initiator:      caller,
		PrimaryToken:   req.PrimaryToken,
		SecondaryToken: req.SecondaryToken,
		Amount:         req.Amount,
		Status:         model.SyncStatusPending,
		InitiatedAt:    height,
	}
	if self.config.OperationTTL > 0 {
		op.ExpiresAt = height + self.config.OperationTTL
	}

	err = self.transaction(ctx, func(tx *gorm.DB) error {
		pair, err := getUsableSyncPair(tx, req.PrimaryToken, req.SecondaryToken)
		if err != nil {
			return err
		}

		_, err = self.convert(req.Amount, pair.ConversionRate)
		if err != nil {
			return err
		}

		active, err := getSyncOperation(tx, syncId)
		if err != nil {
			return err
		}
		if active != nil {
			return newError(CodeSyncFailed, "operation %s already exists", syncId)
		}

		resolved, err := getSyncHistory(tx, syncId)
		if err != nil {
			return err
		}
		if resolved != nil {
			return newError(CodeSyncFailed, "operation %s was already %s", syncId, resolved.Status)
		}

		return tx.Create(op).Error
	})
	if err != nil {
		op = nil
		return
	}

	self.monitor.GetReport().Synchronizer.State.SyncsInitiated.Inc()
	self.log.WithField("sync_id", syncId).
		WithField("initiator", caller).
		WithField("primary", req.PrimaryToken).
		WithField("secondary", req.SecondaryToken).
		WithField("amount", req.Amount).
		WithField("height", height).
		Info("Sync initiated")
	return
}

// Nil if the operation isn't active
func (self *Synchronizer) GetSyncOperation(ctx context.Context, syncId string) (*model.SyncOperation, error) {
	return getSyncOperation(self.db.WithContext(ctx), syncId)
}

// Nil if the operation wasn't resolved
func (self *Synchronizer) GetSyncHistory(ctx context.Context, syncId string) (*model.SyncHistory, error) {
	return getSyncHistory(self.db.WithContext(ctx), syncId)
}

// Resolved operations where the token was on either side, oldest first
func (self *Synchronizer) GetSyncHistoryByToken(ctx context.Context, tokenId string) (out []*model.SyncHistory, err error) {
	out = make([]*model.SyncHistory, 0)
	err = self.db.WithContext(ctx).
		Where("primary_token = ? OR secondary_token = ?", tokenId, tokenId).
		Order("completed_at ASC").
		Order("sync_id ASC").
		Find(&out).
		Error
	return
}

// Active operations, oldest first
func (self *Synchronizer) ListPendingSyncs(ctx context.Context) (out []*model.SyncOperation, err error) {
	out = make([]*model.SyncOperation, 0)
	err = self.db.WithContext(ctx).
		Order("initiated_at ASC").
		Order("sync_id ASC").
		Find(&out).
		Error
	return
}
