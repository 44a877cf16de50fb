package synchronizer

import (
	"context"

	"github.com/warp-contracts/token-syncer/src/utils/model"

	"gorm.io/gorm"
)

// Marks the operation PROCESSING, only if it's still PENDING
func startProcessing(tx *gorm.DB, syncId string) error {
	result := tx.Model(&model.SyncOperation{}).
		Where("sync_id = ? AND status = ?", syncId, model.SyncStatusPending).
		UpdateColumn("status", model.SyncStatusProcessing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return newError(CodeSyncInProgress, "operation %s is no longer pending", syncId)
	}
	return nil
}

// Removes a PENDING operation from the active table
func removePending(tx *gorm.DB, syncId string) error {
	result := tx.Where("sync_id = ? AND status = ?", syncId, model.SyncStatusPending).
		Delete(&model.SyncOperation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return newError(CodeSyncInProgress, "operation %s is no longer pending", syncId)
	}
	return nil
}

// Moves tokens for a PENDING operation and records it as COMPLETED.
// Any failure, including the adapter's, leaves the operation PENDING.
func (self *Synchronizer) ExecuteSync(ctx context.Context, caller, syncId string) (history *model.SyncHistory, err error) {
	defer func() { self.onError(err) }()

	if caller == "" {
		err = newError(CodeInvalidInput, "unknown executor")
		return
	}

	if !self.claim(syncId) {
		err = newError(CodeSyncInProgress, "operation %s is being resolved", syncId)
		return
	}
	defer self.release(syncId)

	self.mtx.Lock()
	defer self.mtx.Unlock()

	height, err := self.clock.Height(ctx)
	if err != nil {
		return
	}

	err = self.transaction(ctx, func(tx *gorm.DB) error {
		op, err := getPendingSyncOperation(tx, syncId)
		if err != nil {
			return err
		}

		// Pair could have changed since the operation was opened
		pair, err := getUsableSyncPair(tx, op.PrimaryToken, op.SecondaryToken)
		if err != nil {
			return err
		}

		converted, err := self.convert(op.Amount, pair.ConversionRate)
		if err != nil {
			return ErrSyncFailed.Wrap(err)
		}

		err = startProcessing(tx, syncId)
		if err != nil {
			return err
		}

		err = self.adapter.Transfer(ctx, &TransferRequest{
			SyncId:          op.SyncId,
			Initiator:       op.Initiator,
			PrimaryToken:    op.PrimaryToken,
			SecondaryToken:  op.SecondaryToken,
			Amount:          op.Amount,
			ConvertedAmount: converted,
			Height:          height,
		})
		if err != nil {
			self.monitor.GetReport().Synchronizer.Errors.AdapterFailures.Inc()
			return ErrSyncFailed.Wrap(err)
		}

		err = tx.Model(&model.SyncPair{}).
			Where("primary_token = ? AND secondary_token = ?", op.PrimaryToken, op.SecondaryToken).
			UpdateColumn("last_sync_block", height).
			Error
		if err != nil {
			return err
		}

		history = model.NewSyncHistory(op, model.SyncStatusCompleted, height, caller)
		history.ConvertedAmount = converted
		err = tx.Create(history).Error
		if err != nil {
			return err
		}

		return tx.Where("sync_id = ?", syncId).Delete(&model.SyncOperation{}).Error
	})
	if err != nil {
		history = nil
		return
	}

	self.monitor.GetReport().Synchronizer.State.SyncsCompleted.Inc()
	self.monitor.GetReport().Synchronizer.State.LastResolvedBlock.Store(height)
	self.log.WithField("sync_id", syncId).
		WithField("converted", history.ConvertedAmount).
		WithField("height", height).
		Info("Sync completed")

	self.emit(history)
	return
}

// Records a PENDING operation as CANCELLED.
// Allowed to the initiator and to whoever passes the authorization gate.
func (self *Synchronizer) CancelSync(ctx context.Context, caller, syncId string) (history *model.SyncHistory, err error) {
	defer func() { self.onError(err) }()

	if !self.claim(syncId) {
		err = newError(CodeSyncInProgress, "operation %s is being resolved", syncId)
		return
	}
	defer self.release(syncId)

	self.mtx.Lock()
	defer self.mtx.Unlock()

	op, err := getPendingSyncOperation(self.db.WithContext(ctx), syncId)
	if err != nil {
		return
	}

	if caller == "" || caller != op.Initiator {
		err = self.authorize(ctx, caller)
		if err != nil {
			return
		}
	}

	height, err := self.clock.Height(ctx)
	if err != nil {
		return
	}

	history, err = self.cancel(ctx, op, height, caller)
	if err != nil {
		return
	}

	self.monitor.GetReport().Synchronizer.State.SyncsCancelled.Inc()
	self.monitor.GetReport().Synchronizer.State.LastResolvedBlock.Store(height)
	self.log.WithField("sync_id", syncId).
		WithField("caller", caller).
		WithField("height", height).
		Info("Sync cancelled")

	self.emit(history)
	return
}

func (self *Synchronizer) cancel(ctx context.Context, op *model.SyncOperation, height int64, resolvedBy string) (history *model.SyncHistory, err error) {
	history = model.NewSyncHistory(op, model.SyncStatusCancelled, height, resolvedBy)
	err = self.transaction(ctx, func(tx *gorm.DB) error {
		err := removePending(tx, op.SyncId)
		if err != nil {
			return err
		}
		return tx.Create(history).Error
	})
	if err != nil {
		return nil, err
	}
	return
}

// Cancels PENDING operations whose expiry height has passed.
// Operations being executed or cancelled at the moment are left for the next sweep.
func (self *Synchronizer) ExpireSyncs(ctx context.Context) (expired []*model.SyncHistory, err error) {
	defer func() { self.onError(err) }()

	self.mtx.Lock()
	defer self.mtx.Unlock()

	height, err := self.clock.Height(ctx)
	if err != nil {
		return
	}

	var ops []*model.SyncOperation
	err = self.db.WithContext(ctx).
		Where("status = ? AND expires_at > 0 AND expires_at <= ?", model.SyncStatusPending, height).
		Order("expires_at ASC").
		Find(&ops).
		Error
	if err != nil {
		return
	}

	expired = make([]*model.SyncHistory, 0, len(ops))
	for _, op := range ops {
		if !self.claim(op.SyncId) {
			continue
		}

		var history *model.SyncHistory
		history, err = self.cancel(ctx, op, height, model.ResolvedByExpiry)
		self.release(op.SyncId)
		if err != nil {
			return
		}

		self.monitor.GetReport().Synchronizer.State.SyncsExpired.Inc()
		self.log.WithField("sync_id", op.SyncId).
			WithField("expires_at", op.ExpiresAt).
			WithField("height", height).
			Info("Sync expired")

		expired = append(expired, history)
		self.emit(history)
	}

	if len(expired) > 0 {
		self.monitor.GetReport().Synchronizer.State.LastResolvedBlock.Store(height)
	}
	return
}
