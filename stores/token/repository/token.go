package repository

import (
	bCtx "github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/token"
	"github.com/ideationmarket/goapi/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

type tokenMongoRepo struct {
	q query.Mongo
}

func New(q query.Mongo) token.Repo {
	return &tokenMongoRepo{
		q: q,
	}
}

func (r *tokenMongoRepo) FindOne(ctx bCtx.Ctx, collection domain.Address, tokenId domain.TokenId) (*token.Token, error) {
	t := &token.Token{}
	qry := bson.M{
		"collection": collection.ToLower(),
		"tokenId":    tokenId,
	}
	if err := r.q.FindOne(ctx, domain.TableTokens, qry, t); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return t, nil
}

func (r *tokenMongoRepo) Upsert(ctx bCtx.Ctx, t *token.Token) error {
	t.Collection = t.Collection.ToLower()
	t.Owner = t.Owner.ToLower()
	selector := bson.M{
		"collection": t.Collection,
		"tokenId":    t.TokenId,
	}
	if err := r.q.Upsert(ctx, domain.TableTokens, selector, t); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": t.Collection,
			"tokenId":    t.TokenId,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (r *tokenMongoRepo) FindBalance(ctx bCtx.Ctx, collection domain.Address, tokenId domain.TokenId, holder domain.Address) (*token.Balance, error) {
	b := &token.Balance{}
	qry := bson.M{
		"collection": collection.ToLower(),
		"tokenId":    tokenId,
		"holder":     holder.ToLower(),
	}
	if err := r.q.FindOne(ctx, domain.TableTokenBalances, qry, b); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return b, nil
}

func (r *tokenMongoRepo) UpsertBalance(ctx bCtx.Ctx, b *token.Balance) error {
	b.Collection = b.Collection.ToLower()
	b.Holder = b.Holder.ToLower()
	selector := bson.M{
		"collection": b.Collection,
		"tokenId":    b.TokenId,
		"holder":     b.Holder,
	}
	if err := r.q.Upsert(ctx, domain.TableTokenBalances, selector, b); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"holder": b.Holder,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (r *tokenMongoRepo) FindApproval(ctx bCtx.Ctx, collection, holder, operator domain.Address) (*token.OperatorApproval, error) {
	a := &token.OperatorApproval{}
	qry := bson.M{
		"collection": collection.ToLower(),
		"holder":     holder.ToLower(),
		"operator":   operator.ToLower(),
	}
	if err := r.q.FindOne(ctx, domain.TableTokenApprovals, qry, a); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return a, nil
}

func (r *tokenMongoRepo) CreateApproval(ctx bCtx.Ctx, a token.OperatorApproval) error {
	a.Collection = a.Collection.ToLower()
	a.Holder = a.Holder.ToLower()
	a.Operator = a.Operator.ToLower()
	selector := bson.M{
		"collection": a.Collection,
		"holder":     a.Holder,
		"operator":   a.Operator,
	}
	if err := r.q.Upsert(ctx, domain.TableTokenApprovals, selector, &a); err != nil {
		ctx.WithField("err", err).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (r *tokenMongoRepo) DeleteApproval(ctx bCtx.Ctx, collection, holder, operator domain.Address) error {
	selector := bson.M{
		"collection": collection.ToLower(),
		"holder":     holder.ToLower(),
		"operator":   operator.ToLower(),
	}
	if err := r.q.Remove(ctx, domain.TableTokenApprovals, selector); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.Remove failed")
		return err
	}
	return nil
}
