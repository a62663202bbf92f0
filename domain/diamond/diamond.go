package diamond

import (
	"math/big"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
)

// FacetCutAction is the action of a legacy diamondCut batch.
type FacetCutAction int32

const (
	FacetCutActionAdd     FacetCutAction = 0
	FacetCutActionReplace FacetCutAction = 1
	FacetCutActionRemove  FacetCutAction = 2
)

// FacetCut is one batch of the legacy single-action cut operation.
type FacetCut struct {
	FacetAddress domain.Address    `json:"facetAddress" bson:"facetAddress"`
	Action       FacetCutAction    `json:"action" bson:"action"`
	Selectors    []domain.Selector `json:"functionSelectors" bson:"functionSelectors"`
}

// FacetFunctions is one (facet, selectors) group of an upgrade.
type FacetFunctions struct {
	FacetAddress domain.Address    `json:"facetAddress" bson:"facetAddress"`
	Selectors    []domain.Selector `json:"functionSelectors" bson:"functionSelectors"`
}

// RegistryEntry is a single selector->facet binding, the unit of the
// routing table. A selector maps to at most one facet at any time.
type RegistryEntry struct {
	Selector domain.Selector `json:"selector" bson:"selector"`
	Facet    domain.Address  `json:"facet" bson:"facet"`
}

// Facet is the loupe view of one installed facet and all of its selectors.
type Facet struct {
	FacetAddress      domain.Address    `json:"facetAddress"`
	FunctionSelectors []domain.Selector `json:"functionSelectors"`
}

type VersionSlot string

const (
	VersionSlotCurrent  VersionSlot = "current"
	VersionSlotPrevious VersionSlot = "previous"
)

// Version pairs a human-readable version string with the registry
// fingerprint it was reviewed against.
type Version struct {
	Slot             VersionSlot `json:"-" bson:"slot"`
	VersionString    string      `json:"versionString" bson:"versionString"`
	ImplementationId string      `json:"implementationId" bson:"implementationId"`
}

// InitCall is the one-shot initializer invoked atomically after a
// registry mutation.
type InitCall struct {
	Selector domain.Selector `json:"selector"`
	Args     interface{}     `json:"args"`
}

// Upgrade is the full argument set of upgradeDiamond. ExtensionSalt and
// ExtensionData are opaque forward-compatibility slots.
type Upgrade struct {
	AddFunctions     []FacetFunctions  `json:"addFunctions"`
	ReplaceFunctions []FacetFunctions  `json:"replaceFunctions"`
	RemoveSelectors  []domain.Selector `json:"removeSelectors"`
	InitTarget       domain.Address    `json:"initTarget"`
	InitCalldata     *InitCall         `json:"initCalldata"`
	ExtensionSalt    string            `json:"extensionSalt"`
	ExtensionData    string            `json:"extensionData"`
}

// Call is a dispatched invocation: caller identity, attached native
// value, the dispatch key and the operation arguments.
type Call struct {
	Caller   domain.Address
	Value    *big.Int
	Selector domain.Selector
	Args     interface{}
}

// CallHandler executes one selector's operation against diamond storage.
type CallHandler func(c ctx.Ctx, call *Call) (interface{}, error)

// Implementation is deployed facet code: an in-process module exposing
// its handlers keyed by selector. Facets hold no state of their own.
type Implementation interface {
	Address() domain.Address
	Handlers() map[domain.Selector]CallHandler
}

// Dispatcher is the proxy entry point. Every call resolves its selector
// against the registry and runs the bound facet's handler.
type Dispatcher interface {
	// Register installs facet code at its address. Registration alone
	// routes nothing; selectors are bound through cuts.
	Register(impl Implementation) error
	// Dispatch resolves call.Selector and executes the bound handler,
	// failing with domain.ErrFunctionNotFound when unbound.
	Dispatch(c ctx.Ctx, call *Call) (interface{}, error)
	// Invoke executes directly against a registered facet address,
	// bypassing the registry. Used for upgrade initializers only.
	Invoke(c ctx.Ctx, facet domain.Address, call *Call) (interface{}, error)
}

type RegistryRepo interface {
	// FindBySelector returns nil when the selector is unbound
	FindBySelector(c ctx.Ctx, selector domain.Selector) (*RegistryEntry, error)
	FindByFacet(c ctx.Ctx, facet domain.Address) ([]*RegistryEntry, error)
	FindAll(c ctx.Ctx) ([]*RegistryEntry, error)
	Bind(c ctx.Ctx, selector domain.Selector, facet domain.Address) error
	Unbind(c ctx.Ctx, selector domain.Selector) error
}

type VersionRepo interface {
	// Get returns nil when the slot has never been written
	Get(c ctx.Ctx, slot VersionSlot) (*Version, error)
	Set(c ctx.Ctx, slot VersionSlot, version *Version) error
}

type CutUsecase interface {
	// UpgradeDiamond applies add, then replace, then remove, owner-gated
	// and all-or-nothing, then runs the initializer if InitTarget is set.
	UpgradeDiamond(c ctx.Ctx, caller domain.Address, upgrade *Upgrade) error
	// DiamondCut is the legacy single-action subset of UpgradeDiamond.
	DiamondCut(c ctx.Ctx, caller domain.Address, cuts []FacetCut, initTarget domain.Address, initCalldata *InitCall) error
	// PreflightCuts is the read-only fail-fast check proposal tooling
	// runs before submitting an upgrade.
	PreflightCuts(c ctx.Ctx, upgrade *Upgrade) error
}

type LoupeUsecase interface {
	Facets(c ctx.Ctx) ([]*Facet, error)
	FacetAddresses(c ctx.Ctx) ([]domain.Address, error)
	FacetFunctionSelectors(c ctx.Ctx, facet domain.Address) ([]domain.Selector, error)
	FacetAddress(c ctx.Ctx, selector domain.Selector) (domain.Address, error)
}

type VersionUsecase interface {
	// ComputeImplementationId hashes the canonical form of the live
	// registry together with the chain id and the diamond address.
	ComputeImplementationId(c ctx.Ctx) (string, error)
	SetVersion(c ctx.Ctx, caller domain.Address, versionString, implementationId string) error
	GetVersion(c ctx.Ctx) (*Version, error)
	GetPreviousVersion(c ctx.Ctx) (*Version, error)
	GetVersionString(c ctx.Ctx) (string, error)
}
