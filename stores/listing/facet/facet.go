package facet

import (
	"github.com/ideationmarket/goapi/base/calldata"
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/selector"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/domain/listing"
)

const (
	SigCreateListing   = "createListing(address,uint256,uint256,uint256,address,bool,address[])"
	SigUpdateListing   = "updateListing(uint256,uint256,uint256,address,bool)"
	SigPurchaseListing = "purchaseListing(uint256)"
	SigCancelListing   = "cancelListing(uint256)"
	SigCleanListing    = "cleanListing(uint256)"
	SigCleanSweep      = "cleanSweep()"

	SigGetListing        = "getListing(uint256)"
	SigGetListingByToken = "getListingByToken(address,uint256)"
	SigGetListings       = "getListings(address,address,uint256,uint256)"
	SigGetNextListingId  = "getNextListingId()"
	SigDisplayPrice      = "displayPrice(uint256)"
)

type marketFacet struct {
	address  domain.Address
	listings listing.Usecase
}

func New(address domain.Address, listings listing.Usecase) diamond.Implementation {
	return &marketFacet{
		address:  address.ToLower(),
		listings: listings,
	}
}

func (f *marketFacet) Address() domain.Address {
	return f.address
}

func (f *marketFacet) Handlers() map[domain.Selector]diamond.CallHandler {
	return map[domain.Selector]diamond.CallHandler{
		selector.FromSignature(SigCreateListing):   f.createListing,
		selector.FromSignature(SigUpdateListing):   f.updateListing,
		selector.FromSignature(SigPurchaseListing): f.purchaseListing,
		selector.FromSignature(SigCancelListing):   f.cancelListing,
		selector.FromSignature(SigCleanListing):    f.cleanListing,
		selector.FromSignature(SigCleanSweep):      f.cleanSweep,

		selector.FromSignature(SigGetListing):        f.getListing,
		selector.FromSignature(SigGetListingByToken): f.getListingByToken,
		selector.FromSignature(SigGetListings):       f.getListings,
		selector.FromSignature(SigGetNextListingId):  f.getNextListingId,
		selector.FromSignature(SigDisplayPrice):      f.displayPrice,
	}
}

func (f *marketFacet) createListing(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	p := &listing.CreateListingPayload{}
	if err := calldata.Bind(call.Args, p); err != nil {
		return nil, err
	}
	return f.listings.CreateListing(c, call.Caller, p)
}

func (f *marketFacet) updateListing(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	p := &listing.UpdateListingPayload{}
	if err := calldata.Bind(call.Args, p); err != nil {
		return nil, err
	}
	return f.listings.UpdateListing(c, call.Caller, p)
}

type listingIdArgs struct {
	ListingId uint64 `json:"listingId"`
}

func (f *marketFacet) purchaseListing(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &listingIdArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return f.listings.PurchaseListing(c, call.Caller, args.ListingId, call.Value)
}

func (f *marketFacet) cancelListing(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &listingIdArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.listings.CancelListing(c, call.Caller, args.ListingId)
}

func (f *marketFacet) cleanListing(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &listingIdArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.listings.CleanListing(c, call.Caller, args.ListingId)
}

func (f *marketFacet) cleanSweep(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.listings.CleanSweep(c)
}

func (f *marketFacet) getListing(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &listingIdArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return f.listings.GetListing(c, args.ListingId)
}

type tokenQueryArgs struct {
	Collection domain.Address `json:"collection"`
	TokenId    domain.TokenId `json:"tokenId"`
}

func (f *marketFacet) getListingByToken(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &tokenQueryArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return f.listings.GetListingByToken(c, args.Collection, args.TokenId)
}

type getListingsArgs struct {
	Collection domain.Address `json:"collection"`
	Seller     domain.Address `json:"seller"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
}

func (f *marketFacet) getListings(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &getListingsArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	opts := []listing.FindAllOptionsFunc{}
	if !args.Collection.IsEmpty() {
		opts = append(opts, listing.WithCollection(args.Collection))
	}
	if !args.Seller.IsEmpty() {
		opts = append(opts, listing.WithSeller(args.Seller))
	}
	if args.Limit > 0 {
		opts = append(opts, listing.WithPagination(args.Offset, args.Limit))
	}
	return f.listings.GetListings(c, opts...)
}

func (f *marketFacet) getNextListingId(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.listings.GetNextListingId(c)
}

func (f *marketFacet) displayPrice(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &listingIdArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return f.listings.DisplayPrice(c, args.ListingId)
}
