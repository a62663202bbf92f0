package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
)

type memRegistry struct {
	entries map[domain.Selector]domain.Address
}

func newMemRegistry() *memRegistry {
	return &memRegistry{entries: map[domain.Selector]domain.Address{}}
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

func TestRegister(t *testing.T) {
	req := require.New(t)

	d := New(newMemRegistry())

	facet := &stubFacet{address: "0x00000000000000000000000000000000000000a1"}
	req.NoError(d.Register(facet))
	req.ErrorIs(d.Register(facet), domain.ErrConflict)

	empty := &stubFacet{address: ""}
	req.ErrorIs(d.Register(empty), domain.ErrInvalidAddress)
}

func TestDispatch(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	registry := newMemRegistry()
	d := New(registry)

	selector := domain.Selector("0x12345678")
	facetAddr := domain.Address("0x00000000000000000000000000000000000000a1")

	called := false
	facet := &stubFacet{
		address: facetAddr,
		handlers: map[domain.Selector]diamond.CallHandler{
			selector: func(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
				called = true
				return call.Caller, nil
			},
		},
	}
	req.NoError(d.Register(facet))

	// unbound selector
	_, err := d.Dispatch(c, &diamond.Call{Selector: selector})
	req.ErrorIs(err, domain.ErrFunctionNotFound)
	req.False(called)

	// bound selector routes to the facet handler
	req.NoError(registry.Bind(c, selector, facetAddr))
	res, err := d.Dispatch(c, &diamond.Call{Caller: "0xabc", Selector: selector})
	req.NoError(err)
	req.True(called)
	req.Equal(domain.Address("0xabc"), res)

	// binding to an address without registered code fails at dispatch
	req.NoError(registry.Bind(c, "0x87654321", "0x00000000000000000000000000000000000000ff"))
	_, err = d.Dispatch(c, &diamond.Call{Selector: "0x87654321"})
	req.ErrorIs(err, domain.ErrFunctionNotFound)
}

func TestInvokeBypassesRegistry(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	d := New(newMemRegistry())

	selector := domain.Selector("0xdeadbeef")
	facetAddr := domain.Address("0x00000000000000000000000000000000000000a2")
	facet := &stubFacet{
		address: facetAddr,
		handlers: map[domain.Selector]diamond.CallHandler{
			selector: func(c ctx.Ctx, call *diamond.Call) (interface{}, error) {
				return "initialized", nil
			},
		},
	}
	req.NoError(d.Register(facet))

	// selector is not bound anywhere, Invoke still reaches the handler
	res, err := d.Invoke(c, facetAddr, &diamond.Call{Selector: selector})
	req.NoError(err)
	req.Equal("initialized", res)

	// unknown facet address
	_, err = d.Invoke(c, "0x00000000000000000000000000000000000000ff", &diamond.Call{Selector: selector})
	req.ErrorIs(err, domain.ErrFunctionNotFound)
}
