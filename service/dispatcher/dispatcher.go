package dispatcher

import (
	"sync"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/log"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
)

type impl struct {
	registry diamond.RegistryRepo

	// callMu serializes dispatched calls; storage mutation within one
	// call is atomic with respect to every other call.
	callMu sync.Mutex

	facetMu sync.RWMutex
	facets  map[domain.Address]diamond.Implementation
}

// New initializes the proxy dispatcher over the selector registry.
func New(registry diamond.RegistryRepo) diamond.Dispatcher {
	return &impl{
		registry: registry,
		facets:   map[domain.Address]diamond.Implementation{},
	}
}

func (im *impl) Register(facet diamond.Implementation) error {
	addr := facet.Address().ToLower()
	if addr.IsEmpty() {
		return domain.ErrInvalidAddress
	}

	im.facetMu.Lock()
	defer im.facetMu.Unlock()

	if _, ok := im.facets[addr]; ok {
		return domain.ErrConflict
	}
	im.facets[addr] = facet
	return nil
}

func (im *impl) Dispatch(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
	im.callMu.Lock()
	defer im.callMu.Unlock()

	sel := call.Selector.ToLower()
	entry, err := im.registry.FindBySelector(c, sel)
	if err != nil {
		c.WithField("err", err).Error("registry.FindBySelector failed")
		return nil, err
	}
	if entry == nil {
		c.WithField("selector", sel).Warn("selector not bound")
		return nil, domain.ErrFunctionNotFound
	}
	return im.invoke(c, entry.Facet, call)
}

// Invoke bypasses the registry and must only be used by the upgrade
// path for initializer calls, which already run under an in-flight
// dispatch and would deadlock on callMu.
func (im *impl) Invoke(c ctx.Ctx, facet domain.Address, call *diamond.Call) (interface{}, error) {
	return im.invoke(c, facet, call)
}

func (im *impl) invoke(c ctx.Ctx, facet domain.Address, call *diamond.Call) (interface{}, error) {
	im.facetMu.RLock()
	f, ok := im.facets[facet.ToLower()]
	im.facetMu.RUnlock()
	if !ok {
		c.WithField("facet", facet).Warn("no code registered at facet address")
		return nil, domain.ErrFunctionNotFound
	}

	handler, ok := f.Handlers()[call.Selector.ToLower()]
	if !ok {
		c.WithFields(log.Fields{
			"facet":    facet,
			"selector": call.Selector,
		}).Warn("facet does not implement selector")
		return nil, domain.ErrFunctionNotFound
	}

	return handler(c, call)
}
