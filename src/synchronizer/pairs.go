package synchronizer

import (
	"context"
	"errors"

	"github.com/warp-contracts/token-syncer/src/utils/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func getSyncPair(tx *gorm.DB, primary, secondary string) (out *model.SyncPair, err error) {
	out = new(model.SyncPair)
	err = tx.Where("primary_token = ? AND secondary_token = ?", primary, secondary).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return
}

// Pair that may be used for syncing right now: configured, enabled, both tokens active
func getUsableSyncPair(tx *gorm.DB, primary, secondary string) (pair *model.SyncPair, err error) {
	pair, err = getSyncPair(tx, primary, secondary)
	if err != nil {
		return
	}
	if pair == nil {
		return nil, newError(CodeSyncFailed, "pair %s->%s isn't configured", primary, secondary)
	}
	if !pair.Enabled {
		return nil, newError(CodeSyncFailed, "pair %s->%s is disabled", primary, secondary)
	}

	for _, tokenId := range []string{primary, secondary} {
		var token *model.TokenContract
		token, err = getTokenContract(tx, tokenId)
		if err != nil {
			return nil, err
		}
		if token == nil || !token.Active {
			return nil, newError(CodeSyncFailed, "token %s is inactive", tokenId)
		}
	}
	return
}

// Sets the whole pair configuration. The sync watermark is reset to the current height.
func (self *Synchronizer) ConfigureSyncPair(ctx context.Context, caller, primary, secondary string, enabled bool, rate int64) (pair *model.SyncPair, err error) {
	defer func() { self.onError(err) }()

	self.mtx.Lock()
	defer self.mtx.Unlock()

	err = self.authorize(ctx, caller)
	if err != nil {
		return
	}

	if primary == secondary {
		err = newError(CodeInvalidTokenPair, "token %s can't be synced with itself", primary)
		return
	}

	if rate <= 0 {
		err = newError(CodeInvalidAmount, "conversion rate has to be positive, got %d", rate)
		return
	}

	for _, tokenId := range []string{primary, secondary} {
		var ok bool
		ok, err = self.registry.IsRegistered(ctx, tokenId)
		if err != nil {
			self.monitor.GetReport().Synchronizer.Errors.RegistryFailures.Inc()
			return
		}
		if !ok {
			err = newError(CodeTokenNotRegistered, "token %s is unknown to the registry", tokenId)
			return
		}
	}

	height, err := self.clock.Height(ctx)
	if err != nil {
		return
	}

	pair = &model.SyncPair{
		PrimaryToken:   primary,
		SecondaryToken: secondary,
		Enabled:        enabled,
		ConversionRate: rate,
		LastSyncBlock:  height,
	}

	err = self.transaction(ctx, func(tx *gorm.DB) error {
		for _, tokenId := range []string{primary, secondary} {
			token, err := getTokenContract(tx, tokenId)
			if err != nil {
				return err
			}
			if token == nil {
				return newError(CodeTokenNotRegistered, "token %s", tokenId)
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "primary_token"}, {Name: "secondary_token"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "conversion_rate", "last_sync_block"}),
		}).Create(pair).Error
	})
	if err != nil {
		pair = nil
		return
	}

	self.monitor.GetReport().Synchronizer.State.PairsConfigured.Inc()
	self.log.WithField("primary", primary).
		WithField("secondary", secondary).
		WithField("enabled", enabled).
		WithField("rate", rate).
		WithField("height", height).
		Info("Pair configured")
	return
}

// Nil if the pair was never configured
func (self *Synchronizer) GetSyncPairDetails(ctx context.Context, primary, secondary string) (*model.SyncPair, error) {
	return getSyncPair(self.db.WithContext(ctx), primary, secondary)
}
