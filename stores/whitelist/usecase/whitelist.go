package usecase

import (
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/listing"
	"github.com/ideationmarket/goapi/domain/settings"
	"github.com/ideationmarket/goapi/domain/whitelist"
)

type impl struct {
	collections whitelist.CollectionRepo
	currencies  whitelist.CurrencyRepo
	buyers      whitelist.BuyerRepo
	listings    listing.Repo
	settings    settings.Usecase
}

func New(
	collections whitelist.CollectionRepo,
	currencies whitelist.CurrencyRepo,
	buyers whitelist.BuyerRepo,
	listings listing.Repo,
	settings settings.Usecase,
) whitelist.Usecase {
	return &impl{
		collections: collections,
		currencies:  currencies,
		buyers:      buyers,
		listings:    listings,
		settings:    settings,
	}
}

func (im *impl) AddCollection(c ctx.Ctx, caller domain.Address, col whitelist.Collection) error {
	if err := im.settings.RequireOwner(c, caller); err != nil {
		return err
	}
	if col.Address.IsEmpty() {
		return domain.ErrInvalidAddress
	}
	if err := im.collections.Create(c, col); err != nil {
		c.WithField("err", err).Error("collections.Create failed")
		return err
	}
	return nil
}

func (im *impl) RemoveCollection(c ctx.Ctx, caller, address domain.Address) error {
	if err := im.settings.RequireOwner(c, caller); err != nil {
		return err
	}
	if err := im.collections.Delete(c, address); err != nil {
		c.WithField("err", err).Error("collections.Delete failed")
		return err
	}
	return nil
}

func (im *impl) AddCollectionBatch(c ctx.Ctx, caller domain.Address, cols []whitelist.Collection) error {
	if err := im.settings.RequireOwner(c, caller); err != nil {
		return err
	}
	if len(cols) == 0 {
		return domain.ErrBadParamInput
	}
	for _, col := range cols {
		if col.Address.IsEmpty() {
			return domain.ErrInvalidAddress
		}
	}
	for _, col := range cols {
		if err := im.collections.Create(c, col); err != nil {
			c.WithFields(log.Fields{
				"err":        err,
				"collection": col.Address,
			}).Error("collections.Create failed")
			return err
		}
	}
	return nil
}

func (im *impl) RemoveCollectionBatch(c ctx.Ctx, caller domain.Address, addresses []domain.Address) error {
	if err := im.settings.RequireOwner(c, caller); err != nil {
		return err
	}
	if len(addresses) == 0 {
		return domain.ErrBadParamInput
	}
	for _, address := range addresses {
		if err := im.collections.Delete(c, address); err != nil {
			c.WithFields(log.Fields{
				"err":        err,
				"collection": address,
			}).Error("collections.Delete failed")
			return err
		}
	}
	return nil
}

func (im *impl) IsWhitelistedCollection(c ctx.Ctx, address domain.Address) (bool, error) {
	col, err := im.collections.FindOne(c, address)
	if err != nil {
		c.WithField("err", err).Error("collections.FindOne failed")
		return false, err
	}
	return col != nil, nil
}

func (im *impl) Collections(c ctx.Ctx) ([]*whitelist.Collection, error) {
	return im.collections.FindAll(c)
}

func (im *impl) AddCurrency(c ctx.Ctx, caller domain.Address, cur whitelist.Currency) error {
	if err := im.settings.RequireOwner(c, caller); err != nil {
		return err
	}
	if err := im.currencies.Create(c, cur); err != nil {
		c.WithField("err", err).Error("currencies.Create failed")
		return err
	}
	return nil
}

func (im *impl) RemoveCurrency(c ctx.Ctx, caller, address domain.Address) error {
	if err := im.settings.RequireOwner(c, caller); err != nil {
		return err
	}
	if err := im.currencies.Delete(c, address); err != nil {
		c.WithField("err", err).Error("currencies.Delete failed")
		return err
	}
	return nil
}

func (im *impl) IsAllowedCurrency(c ctx.Ctx, address domain.Address) (bool, error) {
	// the zero address is the native currency sentinel and is always
	// tradable
	if address.IsEmpty() {
		return true, nil
	}
	cur, err := im.currencies.FindOne(c, address)
	if err != nil {
		c.WithField("err", err).Error("currencies.FindOne failed")
		return false, err
	}
	return cur != nil, nil
}

func (im *impl) Currencies(c ctx.Ctx) ([]*whitelist.Currency, error) {
	return im.currencies.FindAll(c)
}

// requireListingSeller gates buyer-whitelist mutations: only the seller
// of the token's active listing may edit its buyer set.
func (im *impl) requireListingSeller(c ctx.Ctx, caller, collection domain.Address, tokenId domain.TokenId) error {
	l, err := im.listings.FindOneByToken(c, collection, tokenId)
	if err != nil {
		c.WithField("err", err).Error("listings.FindOneByToken failed")
		return err
	}
	if l == nil {
		return domain.ErrListingNotActive
	}
	if !l.Seller.Equals(caller) {
		return domain.ErrNotSeller
	}
	return nil
}

func (im *impl) checkBatchSize(c ctx.Ctx, size int) error {
	max, err := im.settings.GetBuyerWhitelistMaxBatchSize(c)
	if err != nil {
		return err
	}
	if size == 0 || size > int(max) {
		return domain.ErrBatchTooLarge
	}
	return nil
}

func (im *impl) AddBuyers(c ctx.Ctx, caller, collection domain.Address, tokenId domain.TokenId, buyers []domain.Address) error {
	if err := im.checkBatchSize(c, len(buyers)); err != nil {
		return err
	}
	if err := im.requireListingSeller(c, caller, collection, tokenId); err != nil {
		return err
	}
	for _, buyer := range buyers {
		if buyer.IsEmpty() {
			return domain.ErrInvalidAddress
		}
	}
	for _, buyer := range buyers {
		if err := im.buyers.Create(c, whitelist.BuyerEntry{
			Collection: collection,
			TokenId:    tokenId,
			Buyer:      buyer,
		}); err != nil {
			c.WithFields(log.Fields{
				"err":   err,
				"buyer": buyer,
			}).Error("buyers.Create failed")
			return err
		}
	}
	return nil
}

func (im *impl) RemoveBuyers(c ctx.Ctx, caller, collection domain.Address, tokenId domain.TokenId, buyers []domain.Address) error {
	if err := im.checkBatchSize(c, len(buyers)); err != nil {
		return err
	}
	if err := im.requireListingSeller(c, caller, collection, tokenId); err != nil {
		return err
	}
	for _, buyer := range buyers {
		if err := im.buyers.Delete(c, collection, tokenId, buyer); err != nil {
			c.WithFields(log.Fields{
				"err":   err,
				"buyer": buyer,
			}).Error("buyers.Delete failed")
			return err
		}
	}
	return nil
}

func (im *impl) IsWhitelistedBuyer(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, buyer domain.Address) (bool, error) {
	entry, err := im.buyers.FindOne(c, collection, tokenId, buyer)
	if err != nil {
		c.WithField("err", err).Error("buyers.FindOne failed")
		return false, err
	}
	return entry != nil, nil
}

func (im *impl) Buyers(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) ([]domain.Address, error) {
	entries, err := im.buyers.FindAll(c, collection, tokenId)
	if err != nil {
		return nil, err
	}
	res := make([]domain.Address, 0, len(entries))
	for _, entry := range entries {
		res = append(res, entry.Buyer)
	}
	return res, nil
}
