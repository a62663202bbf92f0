package facet

import (
	"github.com/ideationmarket/goapi/base/calldata"
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/selector"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/domain/whitelist"
)

const (
	SigAddWhitelistedCollection          = "addWhitelistedCollection(address)"
	SigRemoveWhitelistedCollection       = "removeWhitelistedCollection(address)"
	SigBatchAddWhitelistedCollections    = "batchAddWhitelistedCollections(address[])"
	SigBatchRemoveWhitelistedCollections = "batchRemoveWhitelistedCollections(address[])"
	SigIsCollectionWhitelisted           = "isCollectionWhitelisted(address)"
	SigGetWhitelistedCollections         = "getWhitelistedCollections()"

	SigAddAllowedCurrency    = "addAllowedCurrency(address)"
	SigRemoveAllowedCurrency = "removeAllowedCurrency(address)"
	SigIsCurrencyAllowed     = "isCurrencyAllowed(address)"
	SigGetAllowedCurrencies  = "getAllowedCurrencies()"

	SigAddBuyerWhitelistAddresses    = "addBuyerWhitelistAddresses(address,uint256,address[])"
	SigRemoveBuyerWhitelistAddresses = "removeBuyerWhitelistAddresses(address,uint256,address[])"
	SigIsBuyerWhitelisted            = "isBuyerWhitelisted(address,uint256,address)"
	SigGetBuyerWhitelist             = "getBuyerWhitelist(address,uint256)"
)

type whitelistFacet struct {
	address   domain.Address
	whitelist whitelist.Usecase
}

func New(address domain.Address, wl whitelist.Usecase) diamond.Implementation {
	return &whitelistFacet{
		address:   address.ToLower(),
		whitelist: wl,
	}
}

func (f *whitelistFacet) Address() domain.Address {
	return f.address
}

func (f *whitelistFacet) Handlers() map[domain.Selector]diamond.CallHandler {
	return map[domain.Selector]diamond.CallHandler{
		selector.FromSignature(SigAddWhitelistedCollection):          f.addCollection,
		selector.FromSignature(SigRemoveWhitelistedCollection):       f.removeCollection,
		selector.FromSignature(SigBatchAddWhitelistedCollections):    f.addCollectionBatch,
		selector.FromSignature(SigBatchRemoveWhitelistedCollections): f.removeCollectionBatch,
		selector.FromSignature(SigIsCollectionWhitelisted):           f.isCollectionWhitelisted,
		selector.FromSignature(SigGetWhitelistedCollections):         f.collections,

		selector.FromSignature(SigAddAllowedCurrency):    f.addCurrency,
		selector.FromSignature(SigRemoveAllowedCurrency): f.removeCurrency,
		selector.FromSignature(SigIsCurrencyAllowed):     f.isCurrencyAllowed,
		selector.FromSignature(SigGetAllowedCurrencies):  f.currencies,

		selector.FromSignature(SigAddBuyerWhitelistAddresses):    f.addBuyers,
		selector.FromSignature(SigRemoveBuyerWhitelistAddresses): f.removeBuyers,
		selector.FromSignature(SigIsBuyerWhitelisted):            f.isBuyerWhitelisted,
		selector.FromSignature(SigGetBuyerWhitelist):             f.buyers,
	}
}

func (f *whitelistFacet) addCollection(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	col := whitelist.Collection{}
	if err := calldata.Bind(call.Args, &col); err != nil {
		return nil, err
	}
	return nil, f.whitelist.AddCollection(c, call.Caller, col)
}

type addressArgs struct {
	Address domain.Address `json:"address"`
}

func (f *whitelistFacet) removeCollection(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &addressArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.whitelist.RemoveCollection(c, call.Caller, args.Address)
}

type collectionBatchArgs struct {
	Collections []whitelist.Collection `json:"collections"`
}

func (f *whitelistFacet) addCollectionBatch(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &collectionBatchArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.whitelist.AddCollectionBatch(c, call.Caller, args.Collections)
}

type addressBatchArgs struct {
	Addresses []domain.Address `json:"addresses"`
}

func (f *whitelistFacet) removeCollectionBatch(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &addressBatchArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.whitelist.RemoveCollectionBatch(c, call.Caller, args.Addresses)
}

func (f *whitelistFacet) isCollectionWhitelisted(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &addressArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return f.whitelist.IsWhitelistedCollection(c, args.Address)
}

func (f *whitelistFacet) collections(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.whitelist.Collections(c)
}

func (f *whitelistFacet) addCurrency(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	cur := whitelist.Currency{}
	if err := calldata.Bind(call.Args, &cur); err != nil {
		return nil, err
	}
	return nil, f.whitelist.AddCurrency(c, call.Caller, cur)
}

func (f *whitelistFacet) removeCurrency(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &addressArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.whitelist.RemoveCurrency(c, call.Caller, args.Address)
}

func (f *whitelistFacet) isCurrencyAllowed(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &addressArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return f.whitelist.IsAllowedCurrency(c, args.Address)
}

func (f *whitelistFacet) currencies(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.whitelist.Currencies(c)
}

type buyerBatchArgs struct {
	Collection domain.Address   `json:"collection"`
	TokenId    domain.TokenId   `json:"tokenId"`
	Buyers     []domain.Address `json:"buyers"`
}

func (f *whitelistFacet) addBuyers(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &buyerBatchArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.whitelist.AddBuyers(c, call.Caller, args.Collection, args.TokenId, args.Buyers)
}

func (f *whitelistFacet) removeBuyers(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &buyerBatchArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.whitelist.RemoveBuyers(c, call.Caller, args.Collection, args.TokenId, args.Buyers)
}

type buyerQueryArgs struct {
	Collection domain.Address `json:"collection"`
	TokenId    domain.TokenId `json:"tokenId"`
	Buyer      domain.Address `json:"buyer"`
}

func (f *whitelistFacet) isBuyerWhitelisted(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &buyerQueryArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return f.whitelist.IsWhitelistedBuyer(c, args.Collection, args.TokenId, args.Buyer)
}

func (f *whitelistFacet) buyers(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &buyerQueryArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return f.whitelist.Buyers(c, args.Collection, args.TokenId)
}
