package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/delivery"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/middleware"
	"github.com/ideationmarket/goapi/stores/diamond/facet"
	authMiddleware "github.com/ideationmarket/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	dispatcher diamond.Dispatcher
}

// New mounts the proxy surface. The write paths and the raw call
// endpoint require auth; the loupe views are public and cached.
func New(e *echo.Echo, dispatcher diamond.Dispatcher, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{dispatcher}

	g := e.Group("/diamond")

	g.POST("/call", h.call, authMiddleware.Auth())

	g.POST("/cut", h.diamondCut, authMiddleware.Auth())
	g.POST("/upgrade", h.upgradeDiamond, authMiddleware.Auth())
	g.POST("/upgrade/preflight", h.preflightCuts, authMiddleware.OptionalAuth())

	g.GET("/facets", h.facets, middleware.CacheHttp(10*time.Second))
	g.GET("/facetAddresses", h.facetAddresses, middleware.CacheHttp(10*time.Second))
	g.GET("/facets/:address/selectors", h.facetFunctionSelectors)
	g.GET("/selectors/:selector/facet", h.facetAddress)

	g.GET("/version", h.getVersion)
	g.GET("/version/previous", h.getPreviousVersion)
	g.GET("/versionString", h.getVersionString)
	g.GET("/implementationId", h.computeImplementationId)
	g.POST("/version", h.setVersion, authMiddleware.Auth())
}

// call is the raw proxy entry point: an arbitrary selector with opaque
// args, resolved against the live routing table.
func (h *handler) call(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type payload struct {
		Selector domain.Selector `json:"selector" validate:"required"`
		Args     interface{}     `json:"args"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if !p.Selector.IsValid() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidSelector)
	}

	res, err := h.dispatcher.Dispatch(context, &diamond.Call{
		Caller:   caller.ToLower(),
		Selector: p.Selector.ToLower(),
		Args:     p.Args,
	})
	if err != nil {
		context.WithField("err", err).Error("dispatcher.Dispatch failed")
		return delivery.MakeJsonResp(c, delivery.StatusFor(err, http.StatusInternalServerError), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) diamondCut(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		Cuts         []diamond.FacetCut `json:"cuts" validate:"required"`
		InitTarget   domain.Address     `json:"initTarget"`
		InitCalldata *diamond.InitCall  `json:"initCalldata"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigDiamondCut, p, nil)
}

func (h *handler) upgradeDiamond(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &diamond.Upgrade{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigUpgradeDiamond, p, nil)
}

func (h *handler) preflightCuts(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &diamond.Upgrade{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigPreflightCuts, p, nil)
}

func (h *handler) facets(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigFacets, nil, nil)
}

func (h *handler) facetAddresses(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigFacetAddresses, nil, nil)
}

func (h *handler) facetFunctionSelectors(c echo.Context) error {
	args := map[string]interface{}{"facet": c.Param("address")}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigFacetFunctionSelectors, args, nil)
}

func (h *handler) facetAddress(c echo.Context) error {
	args := map[string]interface{}{"selector": c.Param("selector")}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigFacetAddress, args, nil)
}

func (h *handler) getVersion(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetVersion, nil, nil)
}

func (h *handler) getPreviousVersion(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetPreviousVersion, nil, nil)
}

func (h *handler) getVersionString(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetVersionString, nil, nil)
}

func (h *handler) computeImplementationId(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigComputeImplementationId, nil, nil)
}

func (h *handler) setVersion(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		VersionString    string `json:"versionString" validate:"required"`
		ImplementationId string `json:"implementationId" validate:"required"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigSetVersion, p, nil)
}
