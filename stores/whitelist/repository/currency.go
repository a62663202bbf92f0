package repository

import (
	bCtx "github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/whitelist"
	"github.com/ideationmarket/goapi/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

type currencyMongoRepo struct {
	q query.Mongo
}

func NewCurrencyRepo(q query.Mongo) whitelist.CurrencyRepo {
	return &currencyMongoRepo{
		q: q,
	}
}

func (r *currencyMongoRepo) FindOne(ctx bCtx.Ctx, address domain.Address) (*whitelist.Currency, error) {
	cur := &whitelist.Currency{}
	qry := bson.M{"address": address.ToLower()}
	if err := r.q.FindOne(ctx, domain.TableAllowedCurrencies, qry, cur); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return cur, nil
}

func (r *currencyMongoRepo) FindAll(ctx bCtx.Ctx) ([]*whitelist.Currency, error) {
	res := []*whitelist.Currency{}
	if err := r.q.Search(ctx, domain.TableAllowedCurrencies, 0, 0, "address", bson.M{}, &res); err != nil {
		ctx.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *currencyMongoRepo) Create(ctx bCtx.Ctx, cur whitelist.Currency) error {
	cur.Address = cur.Address.ToLower()
	selector := bson.M{"address": cur.Address}
	if err := r.q.Upsert(ctx, domain.TableAllowedCurrencies, selector, &cur); err != nil {
		ctx.WithField("err", err).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (r *currencyMongoRepo) Delete(ctx bCtx.Ctx, address domain.Address) error {
	selector := bson.M{"address": address.ToLower()}
	if err := r.q.Remove(ctx, domain.TableAllowedCurrencies, selector); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.Remove failed")
		return err
	}
	return nil
}
