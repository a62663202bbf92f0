package repository

import (
	bCtx "github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

type registryMongoRepo struct {
	q query.Mongo
}

func NewRegistryRepo(q query.Mongo) diamond.RegistryRepo {
	return &registryMongoRepo{
		q: q,
	}
}

func (r *registryMongoRepo) FindBySelector(ctx bCtx.Ctx, sel domain.Selector) (*diamond.RegistryEntry, error) {
	entry := &diamond.RegistryEntry{}
	qry := bson.M{"selector": sel.ToLower()}
	if err := r.q.FindOne(ctx, domain.TableDiamondRegistry, qry, entry); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return entry, nil
}

func (r *registryMongoRepo) FindByFacet(ctx bCtx.Ctx, facet domain.Address) ([]*diamond.RegistryEntry, error) {
	res := []*diamond.RegistryEntry{}
	qry := bson.M{"facet": facet.ToLower()}
	if err := r.q.Search(ctx, domain.TableDiamondRegistry, 0, 0, "selector", qry, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"facet": facet,
		}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *registryMongoRepo) FindAll(ctx bCtx.Ctx) ([]*diamond.RegistryEntry, error) {
	res := []*diamond.RegistryEntry{}
	if err := r.q.Search(ctx, domain.TableDiamondRegistry, 0, 0, "selector", bson.M{}, &res); err != nil {
		ctx.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *registryMongoRepo) Bind(ctx bCtx.Ctx, sel domain.Selector, facet domain.Address) error {
	selector := bson.M{"selector": sel.ToLower()}
	entry := &diamond.RegistryEntry{Selector: sel.ToLower(), Facet: facet.ToLower()}
	if err := r.q.Upsert(ctx, domain.TableDiamondRegistry, selector, entry); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": sel,
			"facet":    facet,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (r *registryMongoRepo) Unbind(ctx bCtx.Ctx, sel domain.Selector) error {
	selector := bson.M{"selector": sel.ToLower()}
	if err := r.q.Remove(ctx, domain.TableDiamondRegistry, selector); err != nil && err != query.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": sel,
		}).Error("q.Remove failed")
		return err
	}
	return nil
}
