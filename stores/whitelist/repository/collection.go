package repository

import (
	bCtx "github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/whitelist"
	"github.com/ideationmarket/goapi/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

type collectionMongoRepo struct {
	q query.Mongo
}

func NewCollectionRepo(q query.Mongo) whitelist.CollectionRepo {
	return &collectionMongoRepo{
		q: q,
	}
}

func (r *collectionMongoRepo) FindOne(ctx bCtx.Ctx, address domain.Address) (*whitelist.Collection, error) {
	col := &whitelist.Collection{}
	qry := bson.M{"address": address.ToLower()}
	if err := r.q.FindOne(ctx, domain.TableWhitelistedCollections, qry, col); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return col, nil
}

func (r *collectionMongoRepo) FindAll(ctx bCtx.Ctx) ([]*whitelist.Collection, error) {
	res := []*whitelist.Collection{}
	if err := r.q.Search(ctx, domain.TableWhitelistedCollections, 0, 0, "address", bson.M{}, &res); err != nil {
		ctx.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *collectionMongoRepo) Create(ctx bCtx.Ctx, col whitelist.Collection) error {
	col.Address = col.Address.ToLower()
	selector := bson.M{"address": col.Address}
	if err := r.q.Upsert(ctx, domain.TableWhitelistedCollections, selector, &col); err != nil {
		ctx.WithField("err", err).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (r *collectionMongoRepo) Delete(ctx bCtx.Ctx, address domain.Address) error {
	selector := bson.M{"address": address.ToLower()}
	if err := r.q.Remove(ctx, domain.TableWhitelistedCollections, selector); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.Remove failed")
		return err
	}
	return nil
}
