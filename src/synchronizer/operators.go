package synchronizer

import (
	"context"
)

func (self *Synchronizer) AddOperator(ctx context.Context, caller, operator string) (err error) {
	defer func() { self.onError(err) }()

	self.mtx.Lock()
	defer self.mtx.Unlock()

	err = self.gate.AddOperator(ctx, caller, operator)
	if err != nil {
		return
	}

	self.log.WithField("operator", operator).WithField("caller", caller).Info("Operator added")
	return
}

func (self *Synchronizer) RemoveOperator(ctx context.Context, caller, operator string) (err error) {
	defer func() { self.onError(err) }()

	self.mtx.Lock()
	defer self.mtx.Unlock()

	err = self.gate.RemoveOperator(ctx, caller, operator)
	if err != nil {
		return
	}

	self.log.WithField("operator", operator).WithField("caller", caller).Info("Operator removed")
	return
}

func (self *Synchronizer) TransferOwnership(ctx context.Context, caller, newOwner string) (err error) {
	defer func() { self.onError(err) }()

	self.mtx.Lock()
	defer self.mtx.Unlock()

	err = self.gate.TransferOwnership(ctx, caller, newOwner)
	if err != nil {
		return
	}

	self.log.WithField("owner", newOwner).WithField("caller", caller).Warn("Ownership transferred")
	return
}

func (self *Synchronizer) CheckOperatorStatus(ctx context.Context, operator string) (bool, error) {
	return self.gate.IsOperator(ctx, operator)
}

func (self *Synchronizer) IsOwner(ctx context.Context, caller string) (bool, error) {
	return self.gate.IsOwner(ctx, caller)
}
