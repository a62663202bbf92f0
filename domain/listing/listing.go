package listing

import (
	"math/big"
	"time"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
)

// Listing is a seller's open offer: one active listing per token at most.
// Prices are integer amounts in the currency's smallest unit, stored as
// decimal strings.
type Listing struct {
	ListingId             uint64         `json:"listingId" bson:"listingId"`
	Seller                domain.Address `json:"seller" bson:"seller"`
	Collection            domain.Address `json:"collection" bson:"collection"`
	TokenId               domain.TokenId `json:"tokenId" bson:"tokenId"`
	Quantity              uint64         `json:"quantity" bson:"quantity"`
	Price                 string         `json:"price" bson:"price"`
	Currency              domain.Address `json:"currency" bson:"currency"`
	BuyerWhitelistEnabled bool           `json:"buyerWhitelistEnabled" bson:"buyerWhitelistEnabled"`
	CreatedAt             time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// PriceAmount parses the stored price.
func (l *Listing) PriceAmount() (*big.Int, bool) {
	return new(big.Int).SetString(l.Price, 10)
}

type CreateListingPayload struct {
	Collection            domain.Address   `json:"collection" validate:"required"`
	TokenId               domain.TokenId   `json:"tokenId" validate:"required"`
	Quantity              uint64           `json:"quantity"`
	Price                 string           `json:"price" validate:"required"`
	Currency              domain.Address   `json:"currency"`
	BuyerWhitelistEnabled bool             `json:"buyerWhitelistEnabled"`
	InitialBuyers         []domain.Address `json:"initialBuyers"`
}

type UpdateListingPayload struct {
	ListingId             uint64         `json:"listingId" validate:"required"`
	Quantity              uint64         `json:"quantity"`
	Price                 string         `json:"price" validate:"required"`
	Currency              domain.Address `json:"currency"`
	BuyerWhitelistEnabled bool           `json:"buyerWhitelistEnabled"`
}

type PurchasePayload struct {
	ListingId uint64 `json:"listingId" validate:"required"`
}

// PurchaseReceipt reports the settlement split of a purchase.
type PurchaseReceipt struct {
	ListingId    uint64         `json:"listingId"`
	Buyer        domain.Address `json:"buyer"`
	Seller       domain.Address `json:"seller"`
	Currency     domain.Address `json:"currency"`
	Price        string         `json:"price"`
	Fee          string         `json:"fee"`
	SellerPayout string         `json:"sellerPayout"`
}

type FindAllOptions struct {
	Collection *domain.Address
	Seller     *domain.Address
	Offset     int
	Limit      int
}

type FindAllOptionsFunc func(*FindAllOptions)

func WithCollection(collection domain.Address) FindAllOptionsFunc {
	return func(o *FindAllOptions) {
		o.Collection = collection.ToLowerPtr()
	}
}

func WithSeller(seller domain.Address) FindAllOptionsFunc {
	return func(o *FindAllOptions) {
		o.Seller = seller.ToLowerPtr()
	}
}

func WithPagination(offset, limit int) FindAllOptionsFunc {
	return func(o *FindAllOptions) {
		o.Offset = offset
		o.Limit = limit
	}
}

type Repo interface {
	// FindOne returns nil for unknown or terminated listing ids
	FindOne(c ctx.Ctx, listingId uint64) (*Listing, error)
	// FindOneByToken returns the active listing for a token, nil if none
	FindOneByToken(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*Listing, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Listing, error)
	Create(c ctx.Ctx, l *Listing) error
	Update(c ctx.Ctx, l *Listing) error
	// Delete terminates a listing; the id is never reused
	Delete(c ctx.Ctx, listingId uint64) error
	// NextListingId returns the monotonically increasing id counter
	// value and advances it
	NextListingId(c ctx.Ctx) (uint64, error)
	// PeekNextListingId reads the counter without advancing it
	PeekNextListingId(c ctx.Ctx) (uint64, error)
}

type Usecase interface {
	CreateListing(c ctx.Ctx, seller domain.Address, p *CreateListingPayload) (*Listing, error)
	UpdateListing(c ctx.Ctx, seller domain.Address, p *UpdateListingPayload) (*Listing, error)
	// PurchaseListing settles the trade: value is the attached native
	// payment (nil for currency-denominated listings, pulled via
	// pre-approval)
	PurchaseListing(c ctx.Ctx, buyer domain.Address, listingId uint64, value *big.Int) (*PurchaseReceipt, error)
	// CancelListing is seller-only, or contract-owner for recovery
	CancelListing(c ctx.Ctx, caller domain.Address, listingId uint64) error
	// CleanListing removes a listing whose backing silently became
	// invalid; fails with domain.ErrStillValid otherwise
	CleanListing(c ctx.Ctx, caller domain.Address, listingId uint64) error
	// CleanSweep applies the CleanListing check across all listings
	// with a bounded worker pool and reports the removed ids
	CleanSweep(c ctx.Ctx) ([]uint64, error)

	GetListing(c ctx.Ctx, listingId uint64) (*Listing, error)
	GetListingByToken(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*Listing, error)
	GetListings(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Listing, error)
	GetNextListingId(c ctx.Ctx) (uint64, error)
	// DisplayPrice renders the price scaled by the currency's decimals
	DisplayPrice(c ctx.Ctx, listingId uint64) (string, error)
}
