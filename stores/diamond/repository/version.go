package repository

import (
	bCtx "github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

type versionMongoRepo struct {
	q query.Mongo
}

func NewVersionRepo(q query.Mongo) diamond.VersionRepo {
	return &versionMongoRepo{
		q: q,
	}
}

func (r *versionMongoRepo) Get(ctx bCtx.Ctx, slot diamond.VersionSlot) (*diamond.Version, error) {
	version := &diamond.Version{}
	qry := bson.M{"slot": slot}
	if err := r.q.FindOne(ctx, domain.TableDiamondVersions, qry, version); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return version, nil
}

func (r *versionMongoRepo) Set(ctx bCtx.Ctx, slot diamond.VersionSlot, version *diamond.Version) error {
	version.Slot = slot
	selector := bson.M{"slot": slot}
	if err := r.q.Upsert(ctx, domain.TableDiamondVersions, selector, version); err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"slot": slot,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}
