package token

import (
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
)

// Token is one asset unit in the holdings ledger the listing engine
// validates and settles against. Unique tokens track a single owner;
// multi-unit tokens track per-holder balances.
type Token struct {
	Collection domain.Address   `json:"collection" bson:"collection"`
	TokenId    domain.TokenId   `json:"tokenId" bson:"tokenId"`
	TokenType  domain.TokenType `json:"tokenType" bson:"tokenType"`
	Owner      domain.Address   `json:"owner" bson:"owner"`
}

// Balance is a multi-unit holder balance.
type Balance struct {
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
	Holder     domain.Address `json:"holder" bson:"holder"`
	Amount     uint64         `json:"amount" bson:"amount"`
}

// OperatorApproval lets an operator transfer any of the holder's tokens
// in a collection. The marketplace requires this approval to settle.
type OperatorApproval struct {
	Collection domain.Address `json:"collection" bson:"collection"`
	Holder     domain.Address `json:"holder" bson:"holder"`
	Operator   domain.Address `json:"operator" bson:"operator"`
}

type Repo interface {
	FindOne(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*Token, error)
	Upsert(c ctx.Ctx, t *Token) error
	FindBalance(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, holder domain.Address) (*Balance, error)
	UpsertBalance(c ctx.Ctx, b *Balance) error
	FindApproval(c ctx.Ctx, collection, holder, operator domain.Address) (*OperatorApproval, error)
	CreateApproval(c ctx.Ctx, a OperatorApproval) error
	DeleteApproval(c ctx.Ctx, collection, holder, operator domain.Address) error
}

type Usecase interface {
	// Mint registers an asset for local bookkeeping
	Mint(c ctx.Ctx, t *Token, initialAmount uint64) error
	OwnerOf(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error)
	BalanceOf(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, holder domain.Address) (uint64, error)
	SetApprovalForAll(c ctx.Ctx, holder, collection, operator domain.Address, approved bool) error
	IsApprovedForAll(c ctx.Ctx, collection, holder, operator domain.Address) (bool, error)
	// Transfer moves quantity units from seller to buyer; callable only
	// from settlement, which has already verified approval
	Transfer(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, from, to domain.Address, quantity uint64) error
	// HoldsEnough reports whether holder owns (unique) or holds at
	// least quantity units (multi-unit) of the token
	HoldsEnough(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, holder domain.Address, quantity uint64) (bool, error)
}
