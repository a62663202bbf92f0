package repository

import (
	bCtx "github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/listing"
	"github.com/ideationmarket/goapi/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

const listingCounterId = "listingId"

type counterDoc struct {
	Id  string `bson:"id"`
	Seq uint64 `bson:"seq"`
}

type listingMongoRepo struct {
	q query.Mongo
}

func NewListingRepo(q query.Mongo) listing.Repo {
	return &listingMongoRepo{
		q: q,
	}
}

func (r *listingMongoRepo) FindOne(ctx bCtx.Ctx, listingId uint64) (*listing.Listing, error) {
	l := &listing.Listing{}
	qry := bson.M{"listingId": listingId}
	if err := r.q.FindOne(ctx, domain.TableListings, qry, l); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return l, nil
}

func (r *listingMongoRepo) FindOneByToken(ctx bCtx.Ctx, collection domain.Address, tokenId domain.TokenId) (*listing.Listing, error) {
	l := &listing.Listing{}
	qry := bson.M{
		"collection": collection.ToLower(),
		"tokenId":    tokenId,
	}
	if err := r.q.FindOne(ctx, domain.TableListings, qry, l); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return l, nil
}

func (r *listingMongoRepo) FindAll(ctx bCtx.Ctx, optFns ...listing.FindAllOptionsFunc) ([]*listing.Listing, error) {
	opts := listing.FindAllOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	qry := bson.M{}
	if opts.Collection != nil {
		qry["collection"] = *opts.Collection
	}
	if opts.Seller != nil {
		qry["seller"] = *opts.Seller
	}

	res := []*listing.Listing{}
	if err := r.q.Search(ctx, domain.TableListings, opts.Offset, opts.Limit, "listingId", qry, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"opts": opts,
		}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *listingMongoRepo) Create(ctx bCtx.Ctx, l *listing.Listing) error {
	l.Seller = l.Seller.ToLower()
	l.Collection = l.Collection.ToLower()
	l.Currency = l.Currency.ToLower()
	if err := r.q.Insert(ctx, domain.TableListings, l); err != nil {
		if err == query.ErrDuplicateKey {
			return domain.ErrAlreadyListed
		}
		ctx.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *listingMongoRepo) Update(ctx bCtx.Ctx, l *listing.Listing) error {
	selector := bson.M{"listingId": l.ListingId}
	if err := r.q.Upsert(ctx, domain.TableListings, selector, l); err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"listingId": l.ListingId,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (r *listingMongoRepo) Delete(ctx bCtx.Ctx, listingId uint64) error {
	selector := bson.M{"listingId": listingId}
	if err := r.q.Remove(ctx, domain.TableListings, selector); err != nil && err != query.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err":       err,
			"listingId": listingId,
		}).Error("q.Remove failed")
		return err
	}
	return nil
}

func (r *listingMongoRepo) NextListingId(ctx bCtx.Ctx) (uint64, error) {
	doc := &counterDoc{}
	selector := bson.M{"id": listingCounterId}
	if err := r.q.Increment(ctx, domain.TableCounters, selector, doc, "seq", 1); err != nil {
		ctx.WithField("err", err).Error("q.Increment failed")
		return 0, err
	}
	return doc.Seq, nil
}

func (r *listingMongoRepo) PeekNextListingId(ctx bCtx.Ctx) (uint64, error) {
	doc := &counterDoc{}
	selector := bson.M{"id": listingCounterId}
	if err := r.q.FindOne(ctx, domain.TableCounters, selector, doc); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return 0, err
	}
	return doc.Seq + 1, nil
}
