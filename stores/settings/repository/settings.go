package repository

import (
	bCtx "github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/settings"
	"github.com/ideationmarket/goapi/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

// the settings document is a singleton keyed by a fixed id
const settingsDocId = "diamond"

type settingsDoc struct {
	Id string `bson:"id"`
	settings.Settings `bson:",inline"`
}

type settingsMongoRepo struct {
	q query.Mongo
}

func NewSettingsRepo(q query.Mongo) settings.Repo {
	return &settingsMongoRepo{
		q: q,
	}
}

func (r *settingsMongoRepo) Get(ctx bCtx.Ctx) (*settings.Settings, error) {
	doc := &settingsDoc{}
	qry := bson.M{"id": settingsDocId}
	if err := r.q.FindOne(ctx, domain.TableDiamondSettings, qry, doc); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	res := doc.Settings
	return &res, nil
}

func (r *settingsMongoRepo) Upsert(ctx bCtx.Ctx, s *settings.Settings) error {
	selector := bson.M{"id": settingsDocId}
	doc := &settingsDoc{Id: settingsDocId, Settings: *s}
	if err := r.q.Upsert(ctx, domain.TableDiamondSettings, selector, doc); err != nil {
		ctx.WithField("err", err).Error("q.Upsert failed")
		return err
	}
	return nil
}
