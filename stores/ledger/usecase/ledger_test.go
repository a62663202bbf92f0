package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/ledger"
)

type balanceKey struct {
	currency domain.Address
	account  domain.Address
}

type allowanceKey struct {
	currency domain.Address
	account  domain.Address
	spender  domain.Address
}

type memLedgerRepo struct {
	balances   map[balanceKey]ledger.Balance
	allowances map[allowanceKey]ledger.Allowance
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{
		balances:   map[balanceKey]ledger.Balance{},
		allowances: map[allowanceKey]ledger.Allowance{},
	}
}

func (r *memLedgerRepo) FindBalance(c ctx.Ctx, currency, account domain.Address) (*ledger.Balance, error) {
	b, ok := r.balances[balanceKey{currency.ToLower(), account.ToLower()}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memLedgerRepo) UpsertBalance(c ctx.Ctx, b *ledger.Balance) error {
	cp := *b
	cp.Currency = cp.Currency.ToLower()
	cp.Account = cp.Account.ToLower()
	r.balances[balanceKey{cp.Currency, cp.Account}] = cp
	return nil
}

func (r *memLedgerRepo) FindAllowance(c ctx.Ctx, currency, account, spender domain.Address) (*ledger.Allowance, error) {
	a, ok := r.allowances[allowanceKey{currency.ToLower(), account.ToLower(), spender.ToLower()}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memLedgerRepo) UpsertAllowance(c ctx.Ctx, a *ledger.Allowance) error {
	cp := *a
	cp.Currency = cp.Currency.ToLower()
	cp.Account = cp.Account.ToLower()
	cp.Spender = cp.Spender.ToLower()
	r.allowances[allowanceKey{cp.Currency, cp.Account, cp.Spender}] = cp
	return nil
}

var (
	alice   = domain.Address("0x5409ed021d9299bf6814279a6a1411a7e866a631")
	bob     = domain.Address("0x6ecbe1db9ef729cbe972c83fb886247691fb6beb")
	spender = domain.Address("0xe36ea790bc9d7ab70c55260c66d52b1eca985f84")

	erc20 = domain.Address("0x00000000000000000000000000000000000000e2")
)

func amount(v int64) *big.Int {
	return big.NewInt(v)
}

func TestDeposit(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	uc := New(newMemLedgerRepo())

	req.ErrorIs(uc.Deposit(c, domain.EmptyAddress, alice, nil), domain.ErrBadParamInput)
	req.ErrorIs(uc.Deposit(c, domain.EmptyAddress, alice, amount(0)), domain.ErrBadParamInput)
	req.ErrorIs(uc.Deposit(c, domain.EmptyAddress, alice, amount(-5)), domain.ErrBadParamInput)

	bal, err := uc.BalanceOf(c, domain.EmptyAddress, alice)
	req.NoError(err)
	req.Zero(bal.Sign())

	req.NoError(uc.Deposit(c, domain.EmptyAddress, alice, amount(1000)))
	req.NoError(uc.Deposit(c, domain.EmptyAddress, alice, amount(500)))
	bal, err = uc.BalanceOf(c, domain.EmptyAddress, alice)
	req.NoError(err)
	req.Zero(bal.Cmp(amount(1500)))

	// balances are per currency
	bal, err = uc.BalanceOf(c, erc20, alice)
	req.NoError(err)
	req.Zero(bal.Sign())
}

func TestTransfer(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	uc := New(newMemLedgerRepo())

	req.NoError(uc.Deposit(c, erc20, alice, amount(100)))

	req.ErrorIs(uc.Transfer(c, erc20, alice, bob, nil), domain.ErrBadParamInput)
	req.ErrorIs(uc.Transfer(c, erc20, alice, bob, amount(-1)), domain.ErrBadParamInput)
	req.ErrorIs(uc.Transfer(c, erc20, alice, bob, amount(101)), domain.ErrInsufficientBalance)

	// zero-amount transfer is a no-op
	req.NoError(uc.Transfer(c, erc20, alice, bob, amount(0)))

	req.NoError(uc.Transfer(c, erc20, alice, bob, amount(40)))
	aliceBal, err := uc.BalanceOf(c, erc20, alice)
	req.NoError(err)
	req.Zero(aliceBal.Cmp(amount(60)))
	bobBal, err := uc.BalanceOf(c, erc20, bob)
	req.NoError(err)
	req.Zero(bobBal.Cmp(amount(40)))
}

func TestApprove(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	uc := New(newMemLedgerRepo())

	req.ErrorIs(uc.Approve(c, alice, erc20, domain.EmptyAddress, amount(10)), domain.ErrInvalidAddress)
	req.ErrorIs(uc.Approve(c, alice, erc20, spender, nil), domain.ErrBadParamInput)
	req.ErrorIs(uc.Approve(c, alice, erc20, spender, amount(-1)), domain.ErrBadParamInput)

	req.NoError(uc.Approve(c, alice, erc20, spender, amount(100)))
	allowance, err := uc.GetAllowance(c, erc20, alice, spender)
	req.NoError(err)
	req.Zero(allowance.Cmp(amount(100)))

	// approve overwrites, it does not accumulate
	req.NoError(uc.Approve(c, alice, erc20, spender, amount(30)))
	allowance, err = uc.GetAllowance(c, erc20, alice, spender)
	req.NoError(err)
	req.Zero(allowance.Cmp(amount(30)))

	// zero revokes
	req.NoError(uc.Approve(c, alice, erc20, spender, amount(0)))
	allowance, err = uc.GetAllowance(c, erc20, alice, spender)
	req.NoError(err)
	req.Zero(allowance.Sign())
}

func TestTransferFrom(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	uc := New(newMemLedgerRepo())

	req.NoError(uc.Deposit(c, erc20, alice, amount(100)))

	req.ErrorIs(uc.TransferFrom(c, erc20, alice, spender, bob, amount(0)), domain.ErrBadParamInput)
	req.ErrorIs(uc.TransferFrom(c, erc20, alice, spender, bob, amount(10)), domain.ErrInsufficientAllowance)

	req.NoError(uc.Approve(c, alice, erc20, spender, amount(50)))

	// allowance bounds the pull even when the balance would cover it
	req.ErrorIs(uc.TransferFrom(c, erc20, alice, spender, bob, amount(60)), domain.ErrInsufficientAllowance)

	req.NoError(uc.TransferFrom(c, erc20, alice, spender, bob, amount(30)))
	aliceBal, err := uc.BalanceOf(c, erc20, alice)
	req.NoError(err)
	req.Zero(aliceBal.Cmp(amount(70)))
	bobBal, err := uc.BalanceOf(c, erc20, bob)
	req.NoError(err)
	req.Zero(bobBal.Cmp(amount(30)))

	// allowance burned down to 20
	allowance, err := uc.GetAllowance(c, erc20, alice, spender)
	req.NoError(err)
	req.Zero(allowance.Cmp(amount(20)))
	req.ErrorIs(uc.TransferFrom(c, erc20, alice, spender, bob, amount(21)), domain.ErrInsufficientAllowance)

	// allowance left but balance drained
	req.NoError(uc.Transfer(c, erc20, alice, bob, amount(70)))
	req.ErrorIs(uc.TransferFrom(c, erc20, alice, spender, bob, amount(20)), domain.ErrInsufficientBalance)
}
