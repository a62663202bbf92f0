package usecase

import (
	"sort"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
)

type loupeImpl struct {
	registry diamond.RegistryRepo
}

func NewLoupeUsecase(registry diamond.RegistryRepo) diamond.LoupeUsecase {
	return &loupeImpl{
		registry: registry,
	}
}

func (im *loupeImpl) Facets(c ctx.Ctx) ([]*diamond.Facet, error) {
	entries, err := im.registry.FindAll(c)
	if err != nil {
		c.WithField("err", err).Error("registry.FindAll failed")
		return nil, err
	}
	return groupByFacet(entries), nil
}

func (im *loupeImpl) FacetAddresses(c ctx.Ctx) ([]domain.Address, error) {
	facets, err := im.Facets(c)
	if err != nil {
		return nil, err
	}
	addresses := make([]domain.Address, 0, len(facets))
	for _, f := range facets {
		addresses = append(addresses, f.FacetAddress)
	}
	return addresses, nil
}

func (im *loupeImpl) FacetFunctionSelectors(c ctx.Ctx, facet domain.Address) ([]domain.Selector, error) {
	entries, err := im.registry.FindByFacet(c, facet)
	if err != nil {
		c.WithField("err", err).Error("registry.FindByFacet failed")
		return nil, err
	}
	selectors := make([]domain.Selector, 0, len(entries))
	for _, e := range entries {
		selectors = append(selectors, e.Selector)
	}
	sortSelectors(selectors)
	return selectors, nil
}

func (im *loupeImpl) FacetAddress(c ctx.Ctx, sel domain.Selector) (domain.Address, error) {
	entry, err := im.registry.FindBySelector(c, sel)
	if err != nil {
		c.WithField("err", err).Error("registry.FindBySelector failed")
		return domain.EmptyAddress, err
	}
	if entry == nil {
		return domain.EmptyAddress, nil
	}
	return entry.Facet, nil
}

// groupByFacet builds the canonical loupe view: facets sorted by
// address ascending, selectors sorted by their 4-byte unsigned value.
func groupByFacet(entries []*diamond.RegistryEntry) []*diamond.Facet {
	grouped := map[domain.Address][]domain.Selector{}
	for _, e := range entries {
		facet := e.Facet.ToLower()
		grouped[facet] = append(grouped[facet], e.Selector.ToLower())
	}

	facets := make([]*diamond.Facet, 0, len(grouped))
	for addr, selectors := range grouped {
		sortSelectors(selectors)
		facets = append(facets, &diamond.Facet{
			FacetAddress:      addr,
			FunctionSelectors: selectors,
		})
	}
	sort.Slice(facets, func(i, j int) bool {
		return facets[i].FacetAddress < facets[j].FacetAddress
	})
	return facets
}

func sortSelectors(selectors []domain.Selector) {
	sort.Slice(selectors, func(i, j int) bool {
		// lowercase fixed-width hex sorts identically to the unsigned
		// 4-byte integer order
		return selectors[i].ToLower() < selectors[j].ToLower()
	})
}
