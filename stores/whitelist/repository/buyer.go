package repository

import (
	bCtx "github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/whitelist"
	"github.com/ideationmarket/goapi/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

type buyerMongoRepo struct {
	q query.Mongo
}

func NewBuyerRepo(q query.Mongo) whitelist.BuyerRepo {
	return &buyerMongoRepo{
		q: q,
	}
}

func (r *buyerMongoRepo) FindOne(ctx bCtx.Ctx, collection domain.Address, tokenId domain.TokenId, buyer domain.Address) (*whitelist.BuyerEntry, error) {
	entry := &whitelist.BuyerEntry{}
	qry := bson.M{
		"collection": collection.ToLower(),
		"tokenId":    tokenId,
		"buyer":      buyer.ToLower(),
	}
	if err := r.q.FindOne(ctx, domain.TableBuyerWhitelist, qry, entry); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return entry, nil
}

func (r *buyerMongoRepo) FindAll(ctx bCtx.Ctx, collection domain.Address, tokenId domain.TokenId) ([]*whitelist.BuyerEntry, error) {
	res := []*whitelist.BuyerEntry{}
	qry := bson.M{
		"collection": collection.ToLower(),
		"tokenId":    tokenId,
	}
	if err := r.q.Search(ctx, domain.TableBuyerWhitelist, 0, 0, "buyer", qry, &res); err != nil {
		ctx.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *buyerMongoRepo) Create(ctx bCtx.Ctx, entry whitelist.BuyerEntry) error {
	entry.Collection = entry.Collection.ToLower()
	entry.Buyer = entry.Buyer.ToLower()
	selector := bson.M{
		"collection": entry.Collection,
		"tokenId":    entry.TokenId,
		"buyer":      entry.Buyer,
	}
	if err := r.q.Upsert(ctx, domain.TableBuyerWhitelist, selector, &entry); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"entry": entry,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (r *buyerMongoRepo) Delete(ctx bCtx.Ctx, collection domain.Address, tokenId domain.TokenId, buyer domain.Address) error {
	selector := bson.M{
		"collection": collection.ToLower(),
		"tokenId":    tokenId,
		"buyer":      buyer.ToLower(),
	}
	if err := r.q.Remove(ctx, domain.TableBuyerWhitelist, selector); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.Remove failed")
		return err
	}
	return nil
}

func (r *buyerMongoRepo) DeleteAll(ctx bCtx.Ctx, collection domain.Address, tokenId domain.TokenId) error {
	selector := bson.M{
		"collection": collection.ToLower(),
		"tokenId":    tokenId,
	}
	if _, err := r.q.RemoveAll(ctx, domain.TableBuyerWhitelist, selector); err != nil {
		ctx.WithField("err", err).Error("q.RemoveAll failed")
		return err
	}
	return nil
}
