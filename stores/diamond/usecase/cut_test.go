package usecase

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/domain/settings"
	"github.com/ideationmarket/goapi/service/dispatcher"
	qmocks "github.com/ideationmarket/goapi/service/query/mocks"
	settings_usecase "github.com/ideationmarket/goapi/stores/settings/usecase"
)

type memRegistry struct {
	entries map[domain.Selector]domain.Address
}

func newMemRegistry() *memRegistry {
	return &memRegistry{entries: map[domain.Selector]domain.Address{}}
}

func (r *memRegistry) snapshot() map[domain.Selector]domain.Address {
	cp := map[domain.Selector]domain.Address{}
	for s, f := range r.entries {
		cp[s] = f
	}
	return cp
}

func (r *memRegistry) restore(snapshot map[domain.Selector]domain.Address) {
	r.entries = snapshot
}

func (r *memRegistry) FindBySelector(c ctx.Ctx, selector domain.Selector) (*diamond.RegistryEntry, error) {
	facet, ok := r.entries[selector.ToLower()]
	if !ok {
		return nil, nil
	}
	return &diamond.RegistryEntry{Selector: selector.ToLower(), Facet: facet}, nil
}

func (r *memRegistry) FindByFacet(c ctx.Ctx, facet domain.Address) ([]*diamond.RegistryEntry, error) {
	res := []*diamond.RegistryEntry{}
	for s, f := range r.entries {
		if f.Equals(facet) {
			res = append(res, &diamond.RegistryEntry{Selector: s, Facet: f})
		}
	}
	return res, nil
}

func (r *memRegistry) FindAll(c ctx.Ctx) ([]*diamond.RegistryEntry, error) {
	res := []*diamond.RegistryEntry{}
	for s, f := range r.entries {
		res = append(res, &diamond.RegistryEntry{Selector: s, Facet: f})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Selector < res[j].Selector })
	return res, nil
}

func (r *memRegistry) Bind(c ctx.Ctx, selector domain.Selector, facet domain.Address) error {
	r.entries[selector.ToLower()] = facet.ToLower()
	return nil
}

func (r *memRegistry) Unbind(c ctx.Ctx, selector domain.Selector) error {
	delete(r.entries, selector.ToLower())
	return nil
}

type memVersions struct {
	slots map[diamond.VersionSlot]*diamond.Version
}

func newMemVersions() *memVersions {
	return &memVersions{slots: map[diamond.VersionSlot]*diamond.Version{}}
}

func (r *memVersions) Get(c ctx.Ctx, slot diamond.VersionSlot) (*diamond.Version, error) {
	v, ok := r.slots[slot]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *memVersions) Set(c ctx.Ctx, slot diamond.VersionSlot, version *diamond.Version) error {
	cp := *version
	cp.Slot = slot
	r.slots[slot] = &cp
	return nil
}

type memSettingsRepo struct {
	doc *settings.Settings
}

func (r *memSettingsRepo) Get(c ctx.Ctx) (*settings.Settings, error) {
	if r.doc == nil {
		return nil, nil
	}
	cp := *r.doc
	return &cp, nil
}

func (r *memSettingsRepo) Upsert(c ctx.Ctx, s *settings.Settings) error {
	cp := *s
	r.doc = &cp
	return nil
}

type stubFacet struct {
	address  domain.Address
	handlers map[domain.Selector]diamond.CallHandler
}

func (f *stubFacet) Address() domain.Address {
	return f.address
}

func (f *stubFacet) Handlers() map[domain.Selector]diamond.CallHandler {
	return f.handlers
}

// transactionalMongo replays the rollback contract against the
// in-memory registry: a failed transaction leaves no partial mutation.
func transactionalMongo(registry *memRegistry) *qmocks.Mongo {
	q := &qmocks.Mongo{}
	q.On("RunWithTransaction", mock.Anything, mock.Anything).
		Return(func(c ctx.Ctx, run func(ctx.Ctx) error) error {
			snapshot := registry.snapshot()
			if err := run(c); err != nil {
				registry.restore(snapshot)
				return err
			}
			return nil
		})
	return q
}

var (
	testOwner    = domain.Address("0x5409ed021d9299bf6814279a6a1411a7e866a631")
	testStranger = domain.Address("0x6ecbe1db9ef729cbe972c83fb886247691fb6beb")

	facetA = domain.Address("0x00000000000000000000000000000000000000a1")
	facetB = domain.Address("0x00000000000000000000000000000000000000b2")
)

type cutFixture struct {
	registry   *memRegistry
	settings   settings.Usecase
	dispatcher diamond.Dispatcher
	cut        diamond.CutUsecase
	loupe      diamond.LoupeUsecase
}

func newCutFixture(t *testing.T) *cutFixture {
	registry := newMemRegistry()
	settingsUC := settings_usecase.New(&memSettingsRepo{})
	require.NoError(t, settingsUC.Init(ctx.Background(), testOwner, 1000, 300))

	disp := dispatcher.New(registry)
	return &cutFixture{
		registry:   registry,
		settings:   settingsUC,
		dispatcher: disp,
		cut:        NewCutUsecase(transactionalMongo(registry), registry, settingsUC, disp),
		loupe:      NewLoupeUsecase(registry),
	}
}

func TestDiamondCut(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newCutFixture(t)

	sel1 := domain.Selector("0x1f931c1c")
	sel2 := domain.Selector("0x7a0ed627")

	req.ErrorIs(fx.cut.DiamondCut(c, testStranger, []diamond.FacetCut{
		{FacetAddress: facetA, Action: diamond.FacetCutActionAdd, Selectors: []domain.Selector{sel1}},
	}, domain.EmptyAddress, nil), domain.ErrNotOwner)

	req.NoError(fx.cut.DiamondCut(c, testOwner, []diamond.FacetCut{
		{FacetAddress: facetA, Action: diamond.FacetCutActionAdd, Selectors: []domain.Selector{sel1, sel2}},
	}, domain.EmptyAddress, nil))

	bound, err := fx.loupe.FacetAddress(c, sel1)
	req.NoError(err)
	req.Equal(facetA, bound)

	// adding a bound selector fails
	err = fx.cut.DiamondCut(c, testOwner, []diamond.FacetCut{
		{FacetAddress: facetB, Action: diamond.FacetCutActionAdd, Selectors: []domain.Selector{sel1}},
	}, domain.EmptyAddress, nil)
	req.ErrorIs(err, domain.ErrInvalidFacetCutAction)

	// replace rebinds, remove unbinds
	req.NoError(fx.cut.DiamondCut(c, testOwner, []diamond.FacetCut{
		{FacetAddress: facetB, Action: diamond.FacetCutActionReplace, Selectors: []domain.Selector{sel1}},
		{Action: diamond.FacetCutActionRemove, Selectors: []domain.Selector{sel2}},
	}, domain.EmptyAddress, nil))

	bound, err = fx.loupe.FacetAddress(c, sel1)
	req.NoError(err)
	req.Equal(facetB, bound)
	bound, err = fx.loupe.FacetAddress(c, sel2)
	req.NoError(err)
	req.True(bound.IsEmpty())

	// replacing or removing an unbound selector fails
	err = fx.cut.DiamondCut(c, testOwner, []diamond.FacetCut{
		{FacetAddress: facetA, Action: diamond.FacetCutActionReplace, Selectors: []domain.Selector{sel2}},
	}, domain.EmptyAddress, nil)
	req.ErrorIs(err, domain.ErrInvalidFacetCutAction)
	err = fx.cut.DiamondCut(c, testOwner, []diamond.FacetCut{
		{Action: diamond.FacetCutActionRemove, Selectors: []domain.Selector{sel2}},
	}, domain.EmptyAddress, nil)
	req.ErrorIs(err, domain.ErrInvalidFacetCutAction)
}

func TestDiamondCutValidation(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newCutFixture(t)

	// empty selector batch
	err := fx.cut.DiamondCut(c, testOwner, []diamond.FacetCut{
		{FacetAddress: facetA, Action: diamond.FacetCutActionAdd, Selectors: nil},
	}, domain.EmptyAddress, nil)
	req.ErrorIs(err, domain.ErrBadParamInput)

	// add without facet address
	err = fx.cut.DiamondCut(c, testOwner, []diamond.FacetCut{
		{Action: diamond.FacetCutActionAdd, Selectors: []domain.Selector{"0x1f931c1c"}},
	}, domain.EmptyAddress, nil)
	req.ErrorIs(err, domain.ErrInvalidAddress)

	// remove must carry no facet address
	err = fx.cut.DiamondCut(c, testOwner, []diamond.FacetCut{
		{FacetAddress: facetA, Action: diamond.FacetCutActionRemove, Selectors: []domain.Selector{"0x1f931c1c"}},
	}, domain.EmptyAddress, nil)
	req.ErrorIs(err, domain.ErrBadParamInput)

	// malformed selector
	err = fx.cut.DiamondCut(c, testOwner, []diamond.FacetCut{
		{FacetAddress: facetA, Action: diamond.FacetCutActionAdd, Selectors: []domain.Selector{"1f931c1c"}},
	}, domain.EmptyAddress, nil)
	req.ErrorIs(err, domain.ErrInvalidSelector)
}

func TestUpgradeDiamond(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newCutFixture(t)

	sel1 := domain.Selector("0x11111111")
	sel2 := domain.Selector("0x22222222")
	sel3 := domain.Selector("0x33333333")

	req.NoError(fx.cut.DiamondCut(c, testOwner, []diamond.FacetCut{
		{FacetAddress: facetA, Action: diamond.FacetCutActionAdd, Selectors: []domain.Selector{sel1, sel2}},
	}, domain.EmptyAddress, nil))

	// add, replace and remove applied in one atomic upgrade
	req.NoError(fx.cut.UpgradeDiamond(c, testOwner, &diamond.Upgrade{
		AddFunctions:     []diamond.FacetFunctions{{FacetAddress: facetB, Selectors: []domain.Selector{sel3}}},
		ReplaceFunctions: []diamond.FacetFunctions{{FacetAddress: facetB, Selectors: []domain.Selector{sel1}}},
		RemoveSelectors:  []domain.Selector{sel2},
	}))

	bound, err := fx.loupe.FacetAddress(c, sel1)
	req.NoError(err)
	req.Equal(facetB, bound)
	bound, err = fx.loupe.FacetAddress(c, sel2)
	req.NoError(err)
	req.True(bound.IsEmpty())
	bound, err = fx.loupe.FacetAddress(c, sel3)
	req.NoError(err)
	req.Equal(facetB, bound)
}

func TestUpgradeInitializer(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newCutFixture(t)

	initSel := domain.Selector("0xaabbccdd")
	failSel := domain.Selector("0xddccbbaa")
	initialized := false
	req.NoError(fx.dispatcher.Register(&stubFacet{
		address: facetA,
		handlers: map[domain.Selector]diamond.CallHandler{
			initSel: func(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
				initialized = true
				req.Equal(testOwner, call.Caller)
				return nil, nil
			},
			failSel: func(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
				return nil, domain.ErrBadParamInput
			},
		},
	}))

	sel := domain.Selector("0x44444444")

	// initializer runs inside the upgrade
	req.NoError(fx.cut.UpgradeDiamond(c, testOwner, &diamond.Upgrade{
		AddFunctions: []diamond.FacetFunctions{{FacetAddress: facetA, Selectors: []domain.Selector{sel}}},
		InitTarget:   facetA,
		InitCalldata: &diamond.InitCall{Selector: initSel},
	}))
	req.True(initialized)

	// init target without calldata
	err := fx.cut.UpgradeDiamond(c, testOwner, &diamond.Upgrade{
		RemoveSelectors: []domain.Selector{sel},
		InitTarget:      facetA,
	})
	req.ErrorIs(err, domain.ErrBadParamInput)

	// a failing initializer reverts the whole upgrade
	sel5 := domain.Selector("0x55555555")
	err = fx.cut.UpgradeDiamond(c, testOwner, &diamond.Upgrade{
		AddFunctions: []diamond.FacetFunctions{{FacetAddress: facetA, Selectors: []domain.Selector{sel5}}},
		InitTarget:   facetA,
		InitCalldata: &diamond.InitCall{Selector: failSel},
	})
	req.ErrorIs(err, domain.ErrInitializerFailed)
	bound, err := fx.loupe.FacetAddress(c, sel5)
	req.NoError(err)
	req.True(bound.IsEmpty())
}

func TestPreflightCuts(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newCutFixture(t)

	sel1 := domain.Selector("0x11111111")
	sel2 := domain.Selector("0x22222222")
	req.NoError(fx.registry.Bind(c, sel1, facetA))

	req.NoError(fx.cut.PreflightCuts(c, &diamond.Upgrade{
		AddFunctions:     []diamond.FacetFunctions{{FacetAddress: facetB, Selectors: []domain.Selector{sel2}}},
		ReplaceFunctions: []diamond.FacetFunctions{{FacetAddress: facetB, Selectors: []domain.Selector{sel1}}},
		RemoveSelectors:  []domain.Selector{sel1},
	}))

	err := fx.cut.PreflightCuts(c, &diamond.Upgrade{
		AddFunctions: []diamond.FacetFunctions{{FacetAddress: facetB, Selectors: []domain.Selector{sel1}}},
	})
	req.ErrorIs(err, domain.ErrSelectorAlreadyBound)

	err = fx.cut.PreflightCuts(c, &diamond.Upgrade{
		ReplaceFunctions: []diamond.FacetFunctions{{FacetAddress: facetB, Selectors: []domain.Selector{sel2}}},
	})
	req.ErrorIs(err, domain.ErrSelectorNotBound)

	err = fx.cut.PreflightCuts(c, &diamond.Upgrade{
		RemoveSelectors: []domain.Selector{sel2},
	})
	req.ErrorIs(err, domain.ErrSelectorNotBound)

	// preflight never mutates the registry
	bound, err := fx.loupe.FacetAddress(c, sel2)
	req.NoError(err)
	req.True(bound.IsEmpty())
}

func TestLoupeFacets(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	fx := newCutFixture(t)

	req.NoError(fx.registry.Bind(c, "0x7a0ed627", facetB))
	req.NoError(fx.registry.Bind(c, "0x1f931c1c", facetA))
	req.NoError(fx.registry.Bind(c, "0x01ffc9a7", facetB))

	facets, err := fx.loupe.Facets(c)
	req.NoError(err)
	req.Len(facets, 2)

	// facets sorted by address, selectors by unsigned value
	req.Equal(facetA, facets[0].FacetAddress)
	req.Equal([]domain.Selector{"0x1f931c1c"}, facets[0].FunctionSelectors)
	req.Equal(facetB, facets[1].FacetAddress)
	req.Equal([]domain.Selector{"0x01ffc9a7", "0x7a0ed627"}, facets[1].FunctionSelectors)

	addresses, err := fx.loupe.FacetAddresses(c)
	req.NoError(err)
	req.Equal([]domain.Address{facetA, facetB}, addresses)

	selectors, err := fx.loupe.FacetFunctionSelectors(c, facetB)
	req.NoError(err)
	req.Equal([]domain.Selector{"0x01ffc9a7", "0x7a0ed627"}, selectors)
}
