package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/delivery"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/stores/settings/facet"
	authMiddleware "github.com/ideationmarket/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	dispatcher diamond.Dispatcher
}

func New(e *echo.Echo, dispatcher diamond.Dispatcher, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{dispatcher}

	g := e.Group("/settings")

	g.GET("/owner", h.owner)
	g.GET("/pendingOwner", h.pendingOwner)
	g.POST("/transferOwnership", h.transferOwnership, authMiddleware.Auth())
	g.POST("/acceptOwnership", h.acceptOwnership, authMiddleware.Auth())

	g.GET("/paused", h.paused)
	g.POST("/pause", h.pause, authMiddleware.Auth())
	g.POST("/unpause", h.unpause, authMiddleware.Auth())

	g.GET("/innovationFee", h.getInnovationFee)
	g.POST("/innovationFee", h.setInnovationFee, authMiddleware.Auth())

	g.GET("/buyerWhitelistMaxBatchSize", h.getBuyerWhitelistMaxBatchSize)
	g.POST("/buyerWhitelistMaxBatchSize", h.setBuyerWhitelistMaxBatchSize, authMiddleware.Auth())
}

func (h *handler) owner(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigOwner, nil, nil)
}

func (h *handler) pendingOwner(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigPendingOwner, nil, nil)
}

func (h *handler) transferOwnership(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		NewOwner domain.Address `json:"newOwner" validate:"required"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigTransferOwnership, p, nil)
}

func (h *handler) acceptOwnership(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigAcceptOwnership, nil, nil)
}

func (h *handler) paused(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigPaused, nil, nil)
}

func (h *handler) pause(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigPause, nil, nil)
}

func (h *handler) unpause(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigUnpause, nil, nil)
}

func (h *handler) getInnovationFee(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetInnovationFee, nil, nil)
}

func (h *handler) setInnovationFee(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		Fee uint32 `json:"fee"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigSetInnovationFee, p, nil)
}

func (h *handler) getBuyerWhitelistMaxBatchSize(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetBuyerWhitelistMaxBatchSize, nil, nil)
}

func (h *handler) setBuyerWhitelistMaxBatchSize(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		Size uint16 `json:"size"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigSetBuyerWhitelistMaxBatchSize, p, nil)
}
