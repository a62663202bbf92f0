package facet

import (
	"github.com/ideationmarket/goapi/base/calldata"
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/selector"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/domain/settings"
)

const (
	SigOwner             = "owner()"
	SigPendingOwner      = "pendingOwner()"
	SigTransferOwnership = "transferOwnership(address)"
	SigAcceptOwnership   = "acceptOwnership()"

	SigPaused  = "paused()"
	SigPause   = "pause()"
	SigUnpause = "unpause()"

	SigSetInnovationFee = "setInnovationFee(uint32)"
	SigGetInnovationFee = "getInnovationFee()"

	SigSetBuyerWhitelistMaxBatchSize = "setBuyerWhitelistMaxBatchSize(uint16)"
	SigGetBuyerWhitelistMaxBatchSize = "getBuyerWhitelistMaxBatchSize()"

	// SigInit is the one-shot initializer reached through Invoke during
	// deployment, never through the routing table.
	SigInit = "init(address,uint32,uint16)"
)

type adminFacet struct {
	address  domain.Address
	settings settings.Usecase
}

func New(address domain.Address, settings settings.Usecase) diamond.Implementation {
	return &adminFacet{
		address:  address.ToLower(),
		settings: settings,
	}
}

func (f *adminFacet) Address() domain.Address {
	return f.address
}

func (f *adminFacet) Handlers() map[domain.Selector]diamond.CallHandler {
	return map[domain.Selector]diamond.CallHandler{
		selector.FromSignature(SigOwner):             f.owner,
		selector.FromSignature(SigPendingOwner):      f.pendingOwner,
		selector.FromSignature(SigTransferOwnership): f.transferOwnership,
		selector.FromSignature(SigAcceptOwnership):   f.acceptOwnership,

		selector.FromSignature(SigPaused):  f.paused,
		selector.FromSignature(SigPause):   f.pause,
		selector.FromSignature(SigUnpause): f.unpause,

		selector.FromSignature(SigSetInnovationFee): f.setInnovationFee,
		selector.FromSignature(SigGetInnovationFee): f.getInnovationFee,

		selector.FromSignature(SigSetBuyerWhitelistMaxBatchSize): f.setBuyerWhitelistMaxBatchSize,
		selector.FromSignature(SigGetBuyerWhitelistMaxBatchSize): f.getBuyerWhitelistMaxBatchSize,

		selector.FromSignature(SigInit): f.init,
	}
}

func (f *adminFacet) owner(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.settings.Owner(c)
}

func (f *adminFacet) pendingOwner(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.settings.PendingOwner(c)
}

type transferOwnershipArgs struct {
	NewOwner domain.Address `json:"newOwner"`
}

func (f *adminFacet) transferOwnership(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &transferOwnershipArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.settings.TransferOwnership(c, call.Caller, args.NewOwner)
}

func (f *adminFacet) acceptOwnership(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	return nil, f.settings.AcceptOwnership(c, call.Caller)
}

func (f *adminFacet) paused(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.settings.IsPaused(c)
}

func (f *adminFacet) pause(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	return nil, f.settings.Pause(c, call.Caller)
}

func (f *adminFacet) unpause(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	return nil, f.settings.Unpause(c, call.Caller)
}

type setInnovationFeeArgs struct {
	Fee uint32 `json:"fee"`
}

func (f *adminFacet) setInnovationFee(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &setInnovationFeeArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.settings.SetInnovationFee(c, call.Caller, args.Fee)
}

func (f *adminFacet) getInnovationFee(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.settings.GetInnovationFee(c)
}

type setMaxBatchSizeArgs struct {
	Size uint16 `json:"size"`
}

func (f *adminFacet) setBuyerWhitelistMaxBatchSize(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &setMaxBatchSizeArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.settings.SetBuyerWhitelistMaxBatchSize(c, call.Caller, args.Size)
}

func (f *adminFacet) getBuyerWhitelistMaxBatchSize(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.settings.GetBuyerWhitelistMaxBatchSize(c)
}

type initArgs struct {
	Owner         domain.Address `json:"owner"`
	InnovationFee uint32         `json:"innovationFee"`
	MaxBatchSize  uint16         `json:"maxBatchSize"`
}

func (f *adminFacet) init(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &initArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.settings.Init(c, args.Owner, args.InnovationFee, args.MaxBatchSize)
}
