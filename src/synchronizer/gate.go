package synchronizer

import (
	"context"
	"errors"

	"github.com/warp-contracts/token-syncer/src/utils/logger"
	"github.com/warp-contracts/token-syncer/src/utils/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gate answers whether a caller may perform administrative operations
type Gate interface {
	IsOwner(ctx context.Context, caller string) (bool, error)
	IsOperator(ctx context.Context, caller string) (bool, error)

	// Owner or operator
	CheckAuthorized(ctx context.Context, caller string) (bool, error)
}

// Ownership is a Gate backed by the sync_owner and sync_operators tables.
// Operator changes and ownership transfer are allowed only to the current owner.
type Ownership struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewOwnership(db *gorm.DB) (self *Ownership) {
	self = new(Ownership)
	self.db = db
	self.log = logger.NewSublogger("ownership")
	return
}

func (self *Ownership) getOwner(tx *gorm.DB) (owner string, err error) {
	var row model.SyncOwner
	err = tx.Where("id = ?", 1).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return row.Owner, err
}

func (self *Ownership) isOwner(tx *gorm.DB, caller string) (bool, error) {
	if caller == "" {
		return false, nil
	}
	owner, err := self.getOwner(tx)
	if err != nil {
		return false, err
	}
	return owner == caller, nil
}

func (self *Ownership) IsOwner(ctx context.Context, caller string) (bool, error) {
	return self.isOwner(self.db.WithContext(ctx), caller)
}

func (self *Ownership) IsOperator(ctx context.Context, caller string) (ok bool, err error) {
	if caller == "" {
		return
	}
	var count int64
	err = self.db.WithContext(ctx).
		Model(&model.SyncOperator{}).
		Where("operator = ?", caller).
		Count(&count).
		Error
	return count > 0, err
}

func (self *Ownership) CheckAuthorized(ctx context.Context, caller string) (ok bool, err error) {
	ok, err = self.IsOwner(ctx, caller)
	if err != nil || ok {
		return
	}
	return self.IsOperator(ctx, caller)
}

// Sets the owner if there's none yet
func (self *Ownership) EnsureOwner(ctx context.Context, owner string) (err error) {
	if owner == "" {
		return
	}
	result := self.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.SyncOwner{Id: 1, Owner: owner})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		self.log.WithField("owner", owner).Info("Initial owner set")
	}
	return
}

// Runs f in a transaction if caller is the current owner
func (self *Ownership) asOwner(ctx context.Context, caller string, f func(tx *gorm.DB) error) error {
	return self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := self.isOwner(tx, caller)
		if err != nil {
			return err
		}
		if !ok {
			return newError(CodeNotAuthorized, "%q is not the owner", caller)
		}
		return f(tx)
	}, model.WriteTxOptions(self.db)...)
}

func (self *Ownership) AddOperator(ctx context.Context, caller, operator string) error {
	if operator == "" {
		return newError(CodeInvalidInput, "empty operator")
	}
	return self.asOwner(ctx, caller, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.SyncOperator{Operator: operator}).
			Error
	})
}

func (self *Ownership) RemoveOperator(ctx context.Context, caller, operator string) error {
	return self.asOwner(ctx, caller, func(tx *gorm.DB) error {
		return tx.Where("operator = ?", operator).
			Delete(&model.SyncOperator{}).
			Error
	})
}

// New owner is authoritative immediately, there's no acceptance step
func (self *Ownership) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	if newOwner == "" {
		return newError(CodeInvalidInput, "empty owner")
	}
	return self.asOwner(ctx, caller, func(tx *gorm.DB) error {
		return tx.Model(&model.SyncOwner{}).
			Where("id = ?", 1).
			Update("owner", newOwner).
			Error
	})
}
