package repository

import (
	bCtx "github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/ledger"
	"github.com/ideationmarket/goapi/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

type ledgerMongoRepo struct {
	q query.Mongo
}

func New(q query.Mongo) ledger.Repo {
	return &ledgerMongoRepo{
		q: q,
	}
}

func (r *ledgerMongoRepo) FindBalance(ctx bCtx.Ctx, currency, account domain.Address) (*ledger.Balance, error) {
	b := &ledger.Balance{}
	qry := bson.M{
		"currency": currency.ToLower(),
		"account":  account.ToLower(),
	}
	if err := r.q.FindOne(ctx, domain.TableLedgerBalances, qry, b); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return b, nil
}

func (r *ledgerMongoRepo) UpsertBalance(ctx bCtx.Ctx, b *ledger.Balance) error {
	b.Currency = b.Currency.ToLower()
	b.Account = b.Account.ToLower()
	selector := bson.M{
		"currency": b.Currency,
		"account":  b.Account,
	}
	if err := r.q.Upsert(ctx, domain.TableLedgerBalances, selector, b); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"account": b.Account,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (r *ledgerMongoRepo) FindAllowance(ctx bCtx.Ctx, currency, account, spender domain.Address) (*ledger.Allowance, error) {
	a := &ledger.Allowance{}
	qry := bson.M{
		"currency": currency.ToLower(),
		"account":  account.ToLower(),
		"spender":  spender.ToLower(),
	}
	if err := r.q.FindOne(ctx, domain.TableLedgerAllowances, qry, a); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return a, nil
}

func (r *ledgerMongoRepo) UpsertAllowance(ctx bCtx.Ctx, a *ledger.Allowance) error {
	a.Currency = a.Currency.ToLower()
	a.Account = a.Account.ToLower()
	a.Spender = a.Spender.ToLower()
	selector := bson.M{
		"currency": a.Currency,
		"account":  a.Account,
		"spender":  a.Spender,
	}
	if err := r.q.Upsert(ctx, domain.TableLedgerAllowances, selector, a); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"account": a.Account,
			"spender": a.Spender,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}
