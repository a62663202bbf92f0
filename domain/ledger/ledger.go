package ledger

import (
	"math/big"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
)

// Balance is one account's holding of one currency. The zero-address
// currency is the chain's native coin. Amounts are decimal strings of
// non-negative integers in the currency's smallest unit.
type Balance struct {
	Currency domain.Address `json:"currency" bson:"currency"`
	Account  domain.Address `json:"account" bson:"account"`
	Amount   string         `json:"amount" bson:"amount"`
}

func (b *Balance) AmountInt() (*big.Int, bool) {
	if b == nil || b.Amount == "" {
		return big.NewInt(0), true
	}
	return new(big.Int).SetString(b.Amount, 10)
}

// Allowance is a spender's remaining pull budget on an account's
// currency balance, the pre-approval of the settlement model.
type Allowance struct {
	Currency domain.Address `json:"currency" bson:"currency"`
	Account  domain.Address `json:"account" bson:"account"`
	Spender  domain.Address `json:"spender" bson:"spender"`
	Amount   string         `json:"amount" bson:"amount"`
}

func (a *Allowance) AmountInt() (*big.Int, bool) {
	if a == nil || a.Amount == "" {
		return big.NewInt(0), true
	}
	return new(big.Int).SetString(a.Amount, 10)
}

type Repo interface {
	// FindBalance returns nil for accounts that never held the currency
	FindBalance(c ctx.Ctx, currency, account domain.Address) (*Balance, error)
	UpsertBalance(c ctx.Ctx, b *Balance) error
	// FindAllowance returns nil when no approval exists
	FindAllowance(c ctx.Ctx, currency, account, spender domain.Address) (*Allowance, error)
	UpsertAllowance(c ctx.Ctx, a *Allowance) error
}

type Usecase interface {
	BalanceOf(c ctx.Ctx, currency, account domain.Address) (*big.Int, error)
	// Deposit credits an account; the funding path of the model
	Deposit(c ctx.Ctx, currency, account domain.Address, amount *big.Int) error
	Approve(c ctx.Ctx, account, currency, spender domain.Address, amount *big.Int) error
	GetAllowance(c ctx.Ctx, currency, account, spender domain.Address) (*big.Int, error)
	// Transfer moves amount between accounts, failing with
	// domain.ErrInsufficientBalance on shortfall
	Transfer(c ctx.Ctx, currency, from, to domain.Address, amount *big.Int) error
	// TransferFrom pulls amount from account using spender's allowance
	TransferFrom(c ctx.Ctx, currency, account, spender, to domain.Address, amount *big.Int) error
}
