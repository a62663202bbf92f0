package facet

import (
	"github.com/ideationmarket/goapi/base/calldata"
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/selector"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
)

// Canonical signatures of the cut, loupe and version surfaces. The cut
// signature hashes to the well-known 0x1f931c1c.
const (
	SigDiamondCut     = "diamondCut((address,uint8,bytes4[])[],address,bytes)"
	SigUpgradeDiamond = "upgradeDiamond((address,bytes4[])[],(address,bytes4[])[],bytes4[],address,bytes,bytes32,bytes)"
	SigPreflightCuts  = "preflightCuts((address,bytes4[])[],(address,bytes4[])[],bytes4[])"

	SigFacets                 = "facets()"
	SigFacetAddresses         = "facetAddresses()"
	SigFacetFunctionSelectors = "facetFunctionSelectors(address)"
	SigFacetAddress           = "facetAddress(bytes4)"

	SigSetVersion              = "setVersion(string,bytes32)"
	SigGetVersion              = "getVersion()"
	SigGetPreviousVersion      = "getPreviousVersion()"
	SigGetVersionString        = "getVersionString()"
	SigComputeImplementationId = "computeImplementationId()"
)

type cutFacet struct {
	address domain.Address
	cuts    diamond.CutUsecase
}

func NewCutFacet(address domain.Address, cuts diamond.CutUsecase) diamond.Implementation {
	return &cutFacet{
		address: address.ToLower(),
		cuts:    cuts,
	}
}

func (f *cutFacet) Address() domain.Address {
	return f.address
}

func (f *cutFacet) Handlers() map[domain.Selector]diamond.CallHandler {
	return map[domain.Selector]diamond.CallHandler{
		selector.FromSignature(SigDiamondCut):     f.diamondCut,
		selector.FromSignature(SigUpgradeDiamond): f.upgradeDiamond,
		selector.FromSignature(SigPreflightCuts):  f.preflightCuts,
	}
}

type diamondCutArgs struct {
	Cuts         []diamond.FacetCut `json:"cuts"`
	InitTarget   domain.Address     `json:"initTarget"`
	InitCalldata *diamond.InitCall  `json:"initCalldata"`
}

func (f *cutFacet) diamondCut(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &diamondCutArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.cuts.DiamondCut(c, call.Caller, args.Cuts, args.InitTarget, args.InitCalldata)
}

func (f *cutFacet) upgradeDiamond(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	upgrade := &diamond.Upgrade{}
	if err := calldata.Bind(call.Args, upgrade); err != nil {
		return nil, err
	}
	return nil, f.cuts.UpgradeDiamond(c, call.Caller, upgrade)
}

func (f *cutFacet) preflightCuts(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	upgrade := &diamond.Upgrade{}
	if err := calldata.Bind(call.Args, upgrade); err != nil {
		return nil, err
	}
	return nil, f.cuts.PreflightCuts(c, upgrade)
}

type loupeFacet struct {
	address  domain.Address
	loupe    diamond.LoupeUsecase
	versions diamond.VersionUsecase
}

// NewLoupeFacet serves the read-only introspection surface: the loupe
// views plus the version slots.
func NewLoupeFacet(address domain.Address, loupe diamond.LoupeUsecase, versions diamond.VersionUsecase) diamond.Implementation {
	return &loupeFacet{
		address:  address.ToLower(),
		loupe:    loupe,
		versions: versions,
	}
}

func (f *loupeFacet) Address() domain.Address {
	return f.address
}

func (f *loupeFacet) Handlers() map[domain.Selector]diamond.CallHandler {
	return map[domain.Selector]diamond.CallHandler{
		selector.FromSignature(SigFacets):                 f.facets,
		selector.FromSignature(SigFacetAddresses):         f.facetAddresses,
		selector.FromSignature(SigFacetFunctionSelectors): f.facetFunctionSelectors,
		selector.FromSignature(SigFacetAddress):           f.facetAddress,
		selector.FromSignature(SigSetVersion):             f.setVersion,
		selector.FromSignature(SigGetVersion):             f.getVersion,
		selector.FromSignature(SigGetPreviousVersion):     f.getPreviousVersion,
		selector.FromSignature(SigGetVersionString):       f.getVersionString,
		selector.FromSignature(SigComputeImplementationId): f.computeImplementationId,
	}
}

func (f *loupeFacet) facets(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.loupe.Facets(c)
}

func (f *loupeFacet) facetAddresses(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.loupe.FacetAddresses(c)
}

type facetQueryArgs struct {
	Facet    domain.Address  `json:"facet"`
	Selector domain.Selector `json:"selector"`
}

func (f *loupeFacet) facetFunctionSelectors(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &facetQueryArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return f.loupe.FacetFunctionSelectors(c, args.Facet)
}

func (f *loupeFacet) facetAddress(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &facetQueryArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return f.loupe.FacetAddress(c, args.Selector)
}

type setVersionArgs struct {
	VersionString    string `json:"versionString"`
	ImplementationId string `json:"implementationId"`
}

func (f *loupeFacet) setVersion(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	args := &setVersionArgs{}
	if err := calldata.Bind(call.Args, args); err != nil {
		return nil, err
	}
	return nil, f.versions.SetVersion(c, call.Caller, args.VersionString, args.ImplementationId)
}

func (f *loupeFacet) getVersion(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.versions.GetVersion(c)
}

func (f *loupeFacet) getPreviousVersion(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.versions.GetPreviousVersion(c)
}

func (f *loupeFacet) getVersionString(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.versions.GetVersionString(c)
}

func (f *loupeFacet) computeImplementationId(c ctx.Ctx, _ *diamond.Call) (interface{}, error) {
	return f.versions.ComputeImplementationId(c)
}
