package usecase

import (
	"math/big"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/ledger"
)

type impl struct {
	balances ledger.Repo
}

func New(balances ledger.Repo) ledger.Usecase {
	return &impl{
		balances: balances,
	}
}

func (im *impl) BalanceOf(c ctx.Ctx, currency, account domain.Address) (*big.Int, error) {
	b, err := im.balances.FindBalance(c, currency, account)
	if err != nil {
		return nil, err
	}
	amount, ok := b.AmountInt()
	if !ok {
		c.WithField("account", account).Error("corrupt balance amount")
		return nil, domain.ErrInternalServerError
	}
	return amount, nil
}

func (im *impl) Deposit(c ctx.Ctx, currency, account domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrBadParamInput
	}
	bal, err := im.BalanceOf(c, currency, account)
	if err != nil {
		return err
	}
	return im.balances.UpsertBalance(c, &ledger.Balance{
		Currency: currency,
		Account:  account,
		Amount:   new(big.Int).Add(bal, amount).String(),
	})
}

func (im *impl) Approve(c ctx.Ctx, account, currency, spender domain.Address, amount *big.Int) error {
	if spender.IsEmpty() {
		return domain.ErrInvalidAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrBadParamInput
	}
	return im.balances.UpsertAllowance(c, &ledger.Allowance{
		Currency: currency,
		Account:  account,
		Spender:  spender,
		Amount:   amount.String(),
	})
}

func (im *impl) GetAllowance(c ctx.Ctx, currency, account, spender domain.Address) (*big.Int, error) {
	a, err := im.balances.FindAllowance(c, currency, account, spender)
	if err != nil {
		return nil, err
	}
	amount, ok := a.AmountInt()
	if !ok {
		c.WithFields(log.Fields{
			"account": account,
			"spender": spender,
		}).Error("corrupt allowance amount")
		return nil, domain.ErrInternalServerError
	}
	return amount, nil
}

func (im *impl) Transfer(c ctx.Ctx, currency, from, to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrBadParamInput
	}
	if amount.Sign() == 0 {
		return nil
	}

	fromBal, err := im.BalanceOf(c, currency, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	toBal, err := im.BalanceOf(c, currency, to)
	if err != nil {
		return err
	}

	if err := im.balances.UpsertBalance(c, &ledger.Balance{
		Currency: currency,
		Account:  from,
		Amount:   new(big.Int).Sub(fromBal, amount).String(),
	}); err != nil {
		return err
	}
	return im.balances.UpsertBalance(c, &ledger.Balance{
		Currency: currency,
		Account:  to,
		Amount:   new(big.Int).Add(toBal, amount).String(),
	})
}

func (im *impl) TransferFrom(c ctx.Ctx, currency, account, spender, to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrBadParamInput
	}
	allowance, err := im.GetAllowance(c, currency, account, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return domain.ErrInsufficientAllowance
	}
	if err := im.Transfer(c, currency, account, to, amount); err != nil {
		return err
	}
	// allowance burns down even when the pull drains the balance first
	return im.balances.UpsertAllowance(c, &ledger.Allowance{
		Currency: currency,
		Account:  account,
		Spender:  spender,
		Amount:   new(big.Int).Sub(allowance, amount).String(),
	})
}
