package usecase

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"github.com/viney-shih/goroutines"
	"golang.org/x/xerrors"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/ledger"
	"github.com/ideationmarket/goapi/domain/listing"
	"github.com/ideationmarket/goapi/domain/settings"
	"github.com/ideationmarket/goapi/domain/token"
	"github.com/ideationmarket/goapi/domain/whitelist"
	"github.com/ideationmarket/goapi/service/query"
)

const cleanSweepWorkers = 10

type impl struct {
	q         query.Mongo
	listings  listing.Repo
	buyers    whitelist.BuyerRepo
	whitelist whitelist.Usecase
	settings  settings.Usecase
	tokens    token.Usecase
	ledger    ledger.Usecase

	// diamondAddress is the marketplace's own account: the approval
	// operator and the fee sink
	diamondAddress domain.Address
}

func New(
	q query.Mongo,
	listings listing.Repo,
	buyers whitelist.BuyerRepo,
	wl whitelist.Usecase,
	settings settings.Usecase,
	tokens token.Usecase,
	ledger ledger.Usecase,
	diamondAddress domain.Address,
) listing.Usecase {
	return &impl{
		q:              q,
		listings:       listings,
		buyers:         buyers,
		whitelist:      wl,
		settings:       settings,
		tokens:         tokens,
		ledger:         ledger,
		diamondAddress: diamondAddress.ToLower(),
	}
}

// validateParams re-checks every creation precondition; update re-applies
// it to the new parameter set.
func (im *impl) validateParams(c ctx.Ctx, seller, collection domain.Address, tokenId domain.TokenId, quantity uint64, price string, currency domain.Address) (*big.Int, error) {
	priceInt, ok := new(big.Int).SetString(price, 10)
	if !ok || priceInt.Sign() <= 0 {
		return nil, domain.ErrInvalidPrice
	}

	if whitelisted, err := im.whitelist.IsWhitelistedCollection(c, collection); err != nil {
		return nil, err
	} else if !whitelisted {
		return nil, xerrors.Errorf("collection %s: %w", collection, domain.ErrNotWhitelisted)
	}

	if allowed, err := im.whitelist.IsAllowedCurrency(c, currency); err != nil {
		return nil, err
	} else if !allowed {
		return nil, domain.ErrInvalidCurrency
	}

	owner, err := im.tokens.OwnerOf(c, collection, tokenId)
	if err != nil {
		return nil, err
	}
	if owner.IsEmpty() {
		// multi-unit tokens have no single owner; quantity is checked
		// by HoldsEnough below
		if quantity == 0 {
			return nil, domain.ErrInvalidQuantity
		}
	} else if quantity != 1 {
		return nil, domain.ErrInvalidQuantity
	}

	if holds, err := im.tokens.HoldsEnough(c, collection, tokenId, seller, quantity); err != nil {
		return nil, err
	} else if !holds {
		return nil, domain.ErrNotTokenOwner
	}

	if approved, err := im.tokens.IsApprovedForAll(c, collection, seller, im.diamondAddress); err != nil {
		return nil, err
	} else if !approved {
		return nil, domain.ErrMissingApproval
	}

	return priceInt, nil
}

func (im *impl) CreateListing(c ctx.Ctx, seller domain.Address, p *listing.CreateListingPayload) (*listing.Listing, error) {
	if err := im.settings.RequireNotPaused(c); err != nil {
		return nil, err
	}
	if _, err := im.validateParams(c, seller, p.Collection, p.TokenId, p.Quantity, p.Price, p.Currency); err != nil {
		return nil, err
	}

	if existing, err := im.listings.FindOneByToken(c, p.Collection, p.TokenId); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrAlreadyListed
	}

	if len(p.InitialBuyers) > 0 && !p.BuyerWhitelistEnabled {
		return nil, domain.ErrBadParamInput
	}
	if len(p.InitialBuyers) > 0 {
		max, err := im.settings.GetBuyerWhitelistMaxBatchSize(c)
		if err != nil {
			return nil, err
		}
		if len(p.InitialBuyers) > int(max) {
			return nil, domain.ErrBatchTooLarge
		}
	}

	l := &listing.Listing{}
	err := im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		listingId, err := im.listings.NextListingId(c)
		if err != nil {
			return err
		}

		now := time.Now()
		*l = listing.Listing{
			ListingId:             listingId,
			Seller:                seller.ToLower(),
			Collection:            p.Collection.ToLower(),
			TokenId:               p.TokenId,
			Quantity:              p.Quantity,
			Price:                 p.Price,
			Currency:              p.Currency.ToLower(),
			BuyerWhitelistEnabled: p.BuyerWhitelistEnabled,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := im.listings.Create(c, l); err != nil {
			return err
		}

		for _, buyer := range p.InitialBuyers {
			if err := im.buyers.Create(c, whitelist.BuyerEntry{
				Collection: p.Collection,
				TokenId:    p.TokenId,
				Buyer:      buyer,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.WithField("err", err).Error("create listing failed")
		return nil, err
	}

	c.WithFields(log.Fields{
		"listingId":  l.ListingId,
		"seller":     l.Seller,
		"collection": l.Collection,
		"tokenId":    l.TokenId,
	}).Info("listing created")
	return l, nil
}

func (im *impl) UpdateListing(c ctx.Ctx, seller domain.Address, p *listing.UpdateListingPayload) (*listing.Listing, error) {
	if err := im.settings.RequireNotPaused(c); err != nil {
		return nil, err
	}

	l, err := im.listings.FindOne(c, p.ListingId)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	if !l.Seller.Equals(seller) {
		return nil, domain.ErrNotSeller
	}

	if _, err := im.validateParams(c, seller, l.Collection, l.TokenId, p.Quantity, p.Price, p.Currency); err != nil {
		return nil, err
	}

	l.Quantity = p.Quantity
	l.Price = p.Price
	l.Currency = p.Currency.ToLower()
	l.BuyerWhitelistEnabled = p.BuyerWhitelistEnabled
	l.UpdatedAt = time.Now()
	if err := im.listings.Update(c, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (im *impl) PurchaseListing(c ctx.Ctx, buyer domain.Address, listingId uint64, value *big.Int) (*listing.PurchaseReceipt, error) {
	if err := im.settings.RequireNotPaused(c); err != nil {
		return nil, err
	}

	l, err := im.listings.FindOne(c, listingId)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	if l.Seller.Equals(buyer) {
		return nil, domain.ErrBadParamInput
	}

	if l.BuyerWhitelistEnabled {
		whitelisted, err := im.whitelist.IsWhitelistedBuyer(c, l.Collection, l.TokenId, buyer)
		if err != nil {
			return nil, err
		}
		if !whitelisted {
			return nil, domain.ErrNotWhitelisted
		}
	}

	// the backing must still hold at settlement time
	if holds, err := im.tokens.HoldsEnough(c, l.Collection, l.TokenId, l.Seller, l.Quantity); err != nil {
		return nil, err
	} else if !holds {
		return nil, domain.ErrNotTokenOwner
	}
	if approved, err := im.tokens.IsApprovedForAll(c, l.Collection, l.Seller, im.diamondAddress); err != nil {
		return nil, err
	} else if !approved {
		return nil, domain.ErrMissingApproval
	}

	price, ok := l.PriceAmount()
	if !ok {
		return nil, domain.ErrInvalidPrice
	}

	native := l.Currency.IsEmpty()
	if native {
		if value == nil || value.Cmp(price) != 0 {
			return nil, domain.ErrPaymentMismatch
		}
	} else if value != nil && value.Sign() != 0 {
		return nil, domain.ErrPaymentMismatch
	}

	feeRate, err := im.settings.GetInnovationFee(c)
	if err != nil {
		return nil, err
	}
	fee := new(big.Int).Mul(price, big.NewInt(int64(feeRate)))
	fee.Quo(fee, big.NewInt(domain.FeeDenominator))
	payout := new(big.Int).Sub(price, fee)

	err = im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		// listing removal precedes any value transfer so a re-entrant
		// call can never observe the listing as active
		if err := im.listings.Delete(c, l.ListingId); err != nil {
			return err
		}
		if err := im.buyers.DeleteAll(c, l.Collection, l.TokenId); err != nil {
			return err
		}

		if native {
			// attached value lands on the diamond account, the seller
			// payout leaves it, the fee stays
			if err := im.ledger.Deposit(c, l.Currency, im.diamondAddress, price); err != nil {
				return err
			}
		} else {
			// pull settlement against the buyer's pre-approval
			if err := im.ledger.TransferFrom(c, l.Currency, buyer, im.diamondAddress, im.diamondAddress, price); err != nil {
				return err
			}
		}
		if err := im.ledger.Transfer(c, l.Currency, im.diamondAddress, l.Seller, payout); err != nil {
			return err
		}

		return im.tokens.Transfer(c, l.Collection, l.TokenId, l.Seller, buyer, l.Quantity)
	})
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"listingId": listingId,
			"buyer":     buyer,
		}).Error("purchase failed")
		return nil, err
	}

	receipt := &listing.PurchaseReceipt{
		ListingId:    l.ListingId,
		Buyer:        buyer.ToLower(),
		Seller:       l.Seller,
		Currency:     l.Currency,
		Price:        price.String(),
		Fee:          fee.String(),
		SellerPayout: payout.String(),
	}
	c.WithFields(log.Fields{
		"listingId": receipt.ListingId,
		"price":     receipt.Price,
		"fee":       receipt.Fee,
	}).Info("listing purchased")
	return receipt, nil
}

func (im *impl) CancelListing(c ctx.Ctx, caller domain.Address, listingId uint64) error {
	l, err := im.listings.FindOne(c, listingId)
	if err != nil {
		return err
	}
	if l == nil {
		return domain.ErrNotFound
	}

	// the contract owner may cancel any listing for recovery
	if !l.Seller.Equals(caller) {
		if err := im.settings.RequireOwner(c, caller); err != nil {
			return domain.ErrNotSeller
		}
	}

	return im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		if err := im.listings.Delete(c, l.ListingId); err != nil {
			return err
		}
		return im.buyers.DeleteAll(c, l.Collection, l.TokenId)
	})
}

func (im *impl) CleanListing(c ctx.Ctx, caller domain.Address, listingId uint64) error {
	l, err := im.listings.FindOne(c, listingId)
	if err != nil {
		return err
	}
	if l == nil {
		return domain.ErrNotFound
	}

	invalid, err := im.isInvalidated(c, l)
	if err != nil {
		return err
	}
	if !invalid {
		return domain.ErrStillValid
	}

	c.WithFields(log.Fields{
		"listingId": l.ListingId,
		"caller":    caller,
	}).Info("cleaning invalidated listing")
	return im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		if err := im.listings.Delete(c, l.ListingId); err != nil {
			return err
		}
		return im.buyers.DeleteAll(c, l.Collection, l.TokenId)
	})
}

// isInvalidated re-verifies the conditions that silently void a
// listing: the seller stopped holding the quantity, or revoked the
// marketplace's approval.
func (im *impl) isInvalidated(c ctx.Ctx, l *listing.Listing) (bool, error) {
	holds, err := im.tokens.HoldsEnough(c, l.Collection, l.TokenId, l.Seller, l.Quantity)
	if err != nil {
		return false, err
	}
	if !holds {
		return true, nil
	}
	approved, err := im.tokens.IsApprovedForAll(c, l.Collection, l.Seller, im.diamondAddress)
	if err != nil {
		return false, err
	}
	return !approved, nil
}

func (im *impl) CleanSweep(c ctx.Ctx) ([]uint64, error) {
	listings, err := im.listings.FindAll(c)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, nil
	}

	b := goroutines.NewBatch(cleanSweepWorkers, goroutines.WithBatchSize(len(listings)))
	defer b.Close()
	for i := 0; i < len(listings); i++ {
		idx := i
		b.Queue(func() (interface{}, error) {
			invalid, err := im.isInvalidated(c, listings[idx])
			if err != nil {
				return nil, err
			}
			if !invalid {
				return nil, nil
			}
			return listings[idx], nil
		})
	}
	b.QueueComplete()

	invalidated := []*listing.Listing{}
	for ret := range b.Results() {
		if ret.Error() != nil {
			c.WithField("err", ret.Error()).Error("clean sweep check failed")
			continue
		}
		if ret.Value() == nil {
			continue
		}
		invalidated = append(invalidated, ret.Value().(*listing.Listing))
	}

	removed := []uint64{}
	for _, l := range invalidated {
		stale := l
		err := im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
			if err := im.listings.Delete(c, stale.ListingId); err != nil {
				return err
			}
			return im.buyers.DeleteAll(c, stale.Collection, stale.TokenId)
		})
		if err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"listingId": stale.ListingId,
			}).Error("clean sweep removal failed")
			continue
		}
		removed = append(removed, stale.ListingId)
	}
	return removed, nil
}

func (im *impl) GetListing(c ctx.Ctx, listingId uint64) (*listing.Listing, error) {
	l, err := im.listings.FindOne(c, listingId)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func (im *impl) GetListingByToken(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*listing.Listing, error) {
	l, err := im.listings.FindOneByToken(c, collection, tokenId)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func (im *impl) GetListings(c ctx.Ctx, opts ...listing.FindAllOptionsFunc) ([]*listing.Listing, error) {
	return im.listings.FindAll(c, opts...)
}

func (im *impl) GetNextListingId(c ctx.Ctx) (uint64, error) {
	return im.listings.PeekNextListingId(c)
}

func (im *impl) DisplayPrice(c ctx.Ctx, listingId uint64) (string, error) {
	l, err := im.GetListing(c, listingId)
	if err != nil {
		return "", err
	}
	price, ok := l.PriceAmount()
	if !ok {
		return "", domain.ErrInvalidPrice
	}

	decimals := int32(18)
	if !l.Currency.IsEmpty() {
		currencies, err := im.whitelist.Currencies(c)
		if err != nil {
			return "", err
		}
		for _, cur := range currencies {
			if cur.Address.Equals(l.Currency) {
				decimals = cur.Decimals
				break
			}
		}
	}
	return decimal.NewFromBigInt(price, -decimals).String(), nil
}
