package whitelist

import (
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
)

// Collection is a collection admitted to the marketplace.
type Collection struct {
	Address domain.Address `json:"address" bson:"address"`
	Name    string         `json:"name" bson:"name"`
}

// Currency is a fungible token accepted as listing currency. The zero
// address denotes the chain's native currency.
type Currency struct {
	Address  domain.Address `json:"address" bson:"address"`
	Symbol   string         `json:"symbol" bson:"symbol"`
	Decimals int32          `json:"decimals" bson:"decimals"`
}

// BuyerEntry whitelists one buyer for one (collection, tokenId) pair.
// Consulted only when a listing enables buyer-gating.
type BuyerEntry struct {
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
	Buyer      domain.Address `json:"buyer" bson:"buyer"`
}

type CollectionRepo interface {
	FindOne(c ctx.Ctx, address domain.Address) (*Collection, error)
	FindAll(c ctx.Ctx) ([]*Collection, error)
	Create(c ctx.Ctx, col Collection) error
	Delete(c ctx.Ctx, address domain.Address) error
}

type CurrencyRepo interface {
	FindOne(c ctx.Ctx, address domain.Address) (*Currency, error)
	FindAll(c ctx.Ctx) ([]*Currency, error)
	Create(c ctx.Ctx, cur Currency) error
	Delete(c ctx.Ctx, address domain.Address) error
}

type BuyerRepo interface {
	FindOne(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, buyer domain.Address) (*BuyerEntry, error)
	FindAll(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) ([]*BuyerEntry, error)
	Create(c ctx.Ctx, entry BuyerEntry) error
	Delete(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, buyer domain.Address) error
	DeleteAll(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) error
}

type Usecase interface {
	// collection whitelist, owner-gated mutations
	AddCollection(c ctx.Ctx, caller domain.Address, col Collection) error
	RemoveCollection(c ctx.Ctx, caller, address domain.Address) error
	AddCollectionBatch(c ctx.Ctx, caller domain.Address, cols []Collection) error
	RemoveCollectionBatch(c ctx.Ctx, caller domain.Address, addresses []domain.Address) error
	IsWhitelistedCollection(c ctx.Ctx, address domain.Address) (bool, error)
	Collections(c ctx.Ctx) ([]*Collection, error)

	// currency whitelist, owner-gated mutations
	AddCurrency(c ctx.Ctx, caller domain.Address, cur Currency) error
	RemoveCurrency(c ctx.Ctx, caller, address domain.Address) error
	IsAllowedCurrency(c ctx.Ctx, address domain.Address) (bool, error)
	Currencies(c ctx.Ctx) ([]*Currency, error)

	// buyer whitelist, gated by the active listing's seller, batches
	// bounded by settings.BuyerWhitelistMaxBatchSize
	AddBuyers(c ctx.Ctx, caller, collection domain.Address, tokenId domain.TokenId, buyers []domain.Address) error
	RemoveBuyers(c ctx.Ctx, caller, collection domain.Address, tokenId domain.TokenId, buyers []domain.Address) error
	IsWhitelistedBuyer(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, buyer domain.Address) (bool, error)
	Buyers(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) ([]domain.Address, error)
}
