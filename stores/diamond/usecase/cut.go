package usecase

import (
	"math/big"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/domain/settings"
	"github.com/ideationmarket/goapi/service/query"
	"golang.org/x/xerrors"
)

type cutImpl struct {
	q          query.Mongo
	registry   diamond.RegistryRepo
	settings   settings.Usecase
	dispatcher diamond.Dispatcher
}

func NewCutUsecase(q query.Mongo, registry diamond.RegistryRepo, settings settings.Usecase, dispatcher diamond.Dispatcher) diamond.CutUsecase {
	return &cutImpl{
		q:          q,
		registry:   registry,
		settings:   settings,
		dispatcher: dispatcher,
	}
}

func (im *cutImpl) UpgradeDiamond(c ctx.Ctx, caller domain.Address, upgrade *diamond.Upgrade) error {
	if err := im.settings.RequireOwner(c, caller); err != nil {
		return err
	}
	if err := validateUpgrade(upgrade); err != nil {
		return err
	}

	if len(upgrade.ExtensionSalt) > 0 || len(upgrade.ExtensionData) > 0 {
		// reserved forward-compatibility slots, accepted but unused
		c.WithFields(log.Fields{
			"extensionSalt": upgrade.ExtensionSalt,
			"extensionData": upgrade.ExtensionData,
		}).Info("upgrade carries extension payload")
	}

	return im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		for _, group := range upgrade.AddFunctions {
			if err := im.applyCut(c, diamond.FacetCutActionAdd, group.FacetAddress, group.Selectors); err != nil {
				return err
			}
		}
		for _, group := range upgrade.ReplaceFunctions {
			if err := im.applyCut(c, diamond.FacetCutActionReplace, group.FacetAddress, group.Selectors); err != nil {
				return err
			}
		}
		if len(upgrade.RemoveSelectors) > 0 {
			if err := im.applyCut(c, diamond.FacetCutActionRemove, domain.EmptyAddress, upgrade.RemoveSelectors); err != nil {
				return err
			}
		}
		return im.runInitializer(c, caller, upgrade.InitTarget, upgrade.InitCalldata)
	})
}

func (im *cutImpl) DiamondCut(c ctx.Ctx, caller domain.Address, cuts []diamond.FacetCut, initTarget domain.Address, initCalldata *diamond.InitCall) error {
	if err := im.settings.RequireOwner(c, caller); err != nil {
		return err
	}
	for _, cut := range cuts {
		if err := validateCutBatch(cut.Action, cut.FacetAddress, cut.Selectors); err != nil {
			return err
		}
	}

	return im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		for _, cut := range cuts {
			if err := im.applyCut(c, cut.Action, cut.FacetAddress, cut.Selectors); err != nil {
				return err
			}
		}
		return im.runInitializer(c, caller, initTarget, initCalldata)
	})
}

func (im *cutImpl) PreflightCuts(c ctx.Ctx, upgrade *diamond.Upgrade) error {
	if err := validateUpgrade(upgrade); err != nil {
		return err
	}
	for _, group := range upgrade.AddFunctions {
		for _, sel := range group.Selectors {
			entry, err := im.registry.FindBySelector(c, sel)
			if err != nil {
				return err
			}
			if entry != nil {
				return xerrors.Errorf("add %s: %w", sel, domain.ErrSelectorAlreadyBound)
			}
		}
	}
	for _, group := range upgrade.ReplaceFunctions {
		for _, sel := range group.Selectors {
			entry, err := im.registry.FindBySelector(c, sel)
			if err != nil {
				return err
			}
			if entry == nil {
				return xerrors.Errorf("replace %s: %w", sel, domain.ErrSelectorNotBound)
			}
		}
	}
	for _, sel := range upgrade.RemoveSelectors {
		entry, err := im.registry.FindBySelector(c, sel)
		if err != nil {
			return err
		}
		if entry == nil {
			return xerrors.Errorf("remove %s: %w", sel, domain.ErrSelectorNotBound)
		}
	}
	return nil
}

// applyCut mutates the registry for one single-action batch. Action
// preconditions follow the upgrade protocol: add requires unbound,
// replace and remove require bound.
func (im *cutImpl) applyCut(c ctx.Ctx, action diamond.FacetCutAction, facet domain.Address, selectors []domain.Selector) error {
	for _, sel := range selectors {
		entry, err := im.registry.FindBySelector(c, sel)
		if err != nil {
			c.WithField("err", err).Error("registry.FindBySelector failed")
			return err
		}

		switch action {
		case diamond.FacetCutActionAdd:
			if entry != nil {
				return xerrors.Errorf("add %s already bound to %s: %w", sel, entry.Facet, domain.ErrInvalidFacetCutAction)
			}
			if err := im.registry.Bind(c, sel, facet); err != nil {
				return err
			}
		case diamond.FacetCutActionReplace:
			if entry == nil {
				return xerrors.Errorf("replace %s not bound: %w", sel, domain.ErrInvalidFacetCutAction)
			}
			if err := im.registry.Bind(c, sel, facet); err != nil {
				return err
			}
		case diamond.FacetCutActionRemove:
			if entry == nil {
				return xerrors.Errorf("remove %s not bound: %w", sel, domain.ErrInvalidFacetCutAction)
			}
			if err := im.registry.Unbind(c, sel); err != nil {
				return err
			}
		default:
			return domain.ErrInvalidFacetCutAction
		}
	}
	return nil
}

// runInitializer executes the one-shot initializer inside the upgrade
// transaction so its failure reverts the registry mutation.
func (im *cutImpl) runInitializer(c ctx.Ctx, caller domain.Address, target domain.Address, calldata *diamond.InitCall) error {
	if target.IsEmpty() {
		return nil
	}
	if calldata == nil {
		return domain.ErrBadParamInput
	}

	call := &diamond.Call{
		Caller:   caller,
		Value:    big.NewInt(0),
		Selector: calldata.Selector,
		Args:     calldata.Args,
	}
	if _, err := im.dispatcher.Invoke(c, target, call); err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"target":   target,
			"selector": calldata.Selector,
		}).Error("upgrade initializer failed")
		return xerrors.Errorf("%s: %w", err.Error(), domain.ErrInitializerFailed)
	}
	return nil
}

func validateUpgrade(upgrade *diamond.Upgrade) error {
	if upgrade == nil {
		return domain.ErrBadParamInput
	}
	for _, group := range upgrade.AddFunctions {
		if err := validateCutBatch(diamond.FacetCutActionAdd, group.FacetAddress, group.Selectors); err != nil {
			return err
		}
	}
	for _, group := range upgrade.ReplaceFunctions {
		if err := validateCutBatch(diamond.FacetCutActionReplace, group.FacetAddress, group.Selectors); err != nil {
			return err
		}
	}
	for _, sel := range upgrade.RemoveSelectors {
		if !sel.IsValid() {
			return domain.ErrInvalidSelector
		}
	}
	return nil
}

func validateCutBatch(action diamond.FacetCutAction, facet domain.Address, selectors []domain.Selector) error {
	if len(selectors) == 0 {
		return domain.ErrBadParamInput
	}
	if action != diamond.FacetCutActionRemove && facet.IsEmpty() {
		return domain.ErrInvalidAddress
	}
	if action == diamond.FacetCutActionRemove && !facet.IsEmpty() {
		return domain.ErrBadParamInput
	}
	for _, sel := range selectors {
		if !sel.IsValid() {
			return domain.ErrInvalidSelector
		}
	}
	return nil
}
