package usecase

import (
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/settings"
)

type impl struct {
	repo settings.Repo
}

func New(repo settings.Repo) settings.Usecase {
	return &impl{repo}
}

func (im *impl) get(c ctx.Ctx) (*settings.Settings, error) {
	s, err := im.repo.Get(c)
	if err != nil {
		c.WithField("err", err).Error("settings.Get failed")
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (im *impl) Init(c ctx.Ctx, owner domain.Address, fee uint32, maxBatchSize uint16) error {
	if owner.IsEmpty() {
		return domain.ErrInvalidAddress
	}
	if fee >= domain.FeeDenominator {
		return domain.ErrFeeTooHigh
	}
	if maxBatchSize == 0 {
		return domain.ErrBadParamInput
	}

	existing, err := im.repo.Get(c)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return im.repo.Upsert(c, &settings.Settings{
		Owner:                      owner.ToLower(),
		PendingOwner:               domain.EmptyAddress,
		Paused:                     false,
		InnovationFee:              fee,
		BuyerWhitelistMaxBatchSize: maxBatchSize,
	})
}

func (im *impl) Owner(c ctx.Ctx) (domain.Address, error) {
	s, err := im.get(c)
	if err != nil {
		return domain.EmptyAddress, err
	}
	return s.Owner, nil
}

func (im *impl) PendingOwner(c ctx.Ctx) (domain.Address, error) {
	s, err := im.get(c)
	if err != nil {
		return domain.EmptyAddress, err
	}
	return s.PendingOwner, nil
}

func (im *impl) TransferOwnership(c ctx.Ctx, caller, newOwner domain.Address) error {
	s, err := im.get(c)
	if err != nil {
		return err
	}
	if !s.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	if newOwner.IsEmpty() {
		return domain.ErrInvalidAddress
	}
	s.PendingOwner = newOwner.ToLower()
	return im.repo.Upsert(c, s)
}

func (im *impl) AcceptOwnership(c ctx.Ctx, caller domain.Address) error {
	s, err := im.get(c)
	if err != nil {
		return err
	}
	if s.PendingOwner.IsEmpty() || !s.PendingOwner.Equals(caller) {
		return domain.ErrNotPendingOwner
	}
	c.WithFields(log.Fields{
		"previousOwner": s.Owner,
		"newOwner":      s.PendingOwner,
	}).Info("ownership handover accepted")
	s.Owner = s.PendingOwner
	s.PendingOwner = domain.EmptyAddress
	return im.repo.Upsert(c, s)
}

func (im *impl) Pause(c ctx.Ctx, caller domain.Address) error {
	s, err := im.get(c)
	if err != nil {
		return err
	}
	if !s.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	s.Paused = true
	return im.repo.Upsert(c, s)
}

func (im *impl) Unpause(c ctx.Ctx, caller domain.Address) error {
	s, err := im.get(c)
	if err != nil {
		return err
	}
	if !s.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	s.Paused = false
	return im.repo.Upsert(c, s)
}

func (im *impl) IsPaused(c ctx.Ctx) (bool, error) {
	s, err := im.get(c)
	if err != nil {
		return false, err
	}
	return s.Paused, nil
}

func (im *impl) SetInnovationFee(c ctx.Ctx, caller domain.Address, fee uint32) error {
	s, err := im.get(c)
	if err != nil {
		return err
	}
	if !s.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	if fee >= domain.FeeDenominator {
		return domain.ErrFeeTooHigh
	}
	s.InnovationFee = fee
	return im.repo.Upsert(c, s)
}

func (im *impl) GetInnovationFee(c ctx.Ctx) (uint32, error) {
	s, err := im.get(c)
	if err != nil {
		return 0, err
	}
	return s.InnovationFee, nil
}

func (im *impl) SetBuyerWhitelistMaxBatchSize(c ctx.Ctx, caller domain.Address, size uint16) error {
	s, err := im.get(c)
	if err != nil {
		return err
	}
	if !s.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	if size == 0 {
		return domain.ErrBadParamInput
	}
	s.BuyerWhitelistMaxBatchSize = size
	return im.repo.Upsert(c, s)
}

func (im *impl) GetBuyerWhitelistMaxBatchSize(c ctx.Ctx) (uint16, error) {
	s, err := im.get(c)
	if err != nil {
		return 0, err
	}
	return s.BuyerWhitelistMaxBatchSize, nil
}

func (im *impl) RequireOwner(c ctx.Ctx, caller domain.Address) error {
	s, err := im.get(c)
	if err != nil {
		return err
	}
	if !s.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	return nil
}

func (im *impl) RequireNotPaused(c ctx.Ctx) error {
	s, err := im.get(c)
	if err != nil {
		return err
	}
	if s.Paused {
		return domain.ErrPaused
	}
	return nil
}
