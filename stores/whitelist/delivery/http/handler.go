package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/delivery"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/domain/whitelist"
	"github.com/ideationmarket/goapi/stores/whitelist/facet"
	authMiddleware "github.com/ideationmarket/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	dispatcher diamond.Dispatcher
}

func New(e *echo.Echo, dispatcher diamond.Dispatcher, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{dispatcher}

	g := e.Group("/whitelist")

	g.GET("/collections", h.collections)
	g.GET("/collections/:address", h.isCollectionWhitelisted)
	g.POST("/collections", h.addCollection, authMiddleware.Auth())
	g.DELETE("/collections/:address", h.removeCollection, authMiddleware.Auth())
	g.POST("/collections/batch", h.addCollectionBatch, authMiddleware.Auth())
	g.DELETE("/collections/batch", h.removeCollectionBatch, authMiddleware.Auth())

	g.GET("/currencies", h.currencies)
	g.GET("/currencies/:address", h.isCurrencyAllowed)
	g.POST("/currencies", h.addCurrency, authMiddleware.Auth())
	g.DELETE("/currencies/:address", h.removeCurrency, authMiddleware.Auth())

	g.GET("/buyers/:collection/:tokenId", h.buyers)
	g.GET("/buyers/:collection/:tokenId/:buyer", h.isBuyerWhitelisted)
	g.POST("/buyers", h.addBuyers, authMiddleware.Auth())
	g.DELETE("/buyers", h.removeBuyers, authMiddleware.Auth())
}

func (h *handler) collections(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetWhitelistedCollections, nil, nil)
}

func (h *handler) isCollectionWhitelisted(c echo.Context) error {
	args := map[string]interface{}{"address": c.Param("address")}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigIsCollectionWhitelisted, args, nil)
}

func (h *handler) addCollection(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &whitelist.Collection{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigAddWhitelistedCollection, p, nil)
}

func (h *handler) removeCollection(c echo.Context) error {
	args := map[string]interface{}{"address": c.Param("address")}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigRemoveWhitelistedCollection, args, nil)
}

func (h *handler) addCollectionBatch(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		Collections []whitelist.Collection `json:"collections" validate:"required"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigBatchAddWhitelistedCollections, p, nil)
}

func (h *handler) removeCollectionBatch(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		Addresses []domain.Address `json:"addresses" validate:"required"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigBatchRemoveWhitelistedCollections, p, nil)
}

func (h *handler) currencies(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetAllowedCurrencies, nil, nil)
}

func (h *handler) isCurrencyAllowed(c echo.Context) error {
	args := map[string]interface{}{"address": c.Param("address")}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigIsCurrencyAllowed, args, nil)
}

func (h *handler) addCurrency(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &whitelist.Currency{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigAddAllowedCurrency, p, nil)
}

func (h *handler) removeCurrency(c echo.Context) error {
	args := map[string]interface{}{"address": c.Param("address")}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigRemoveAllowedCurrency, args, nil)
}

type buyerBatchPayload struct {
	Collection domain.Address   `json:"collection" validate:"required"`
	TokenId    domain.TokenId   `json:"tokenId" validate:"required"`
	Buyers     []domain.Address `json:"buyers" validate:"required"`
}

func (h *handler) addBuyers(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &buyerBatchPayload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigAddBuyerWhitelistAddresses, p, nil)
}

func (h *handler) removeBuyers(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &buyerBatchPayload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigRemoveBuyerWhitelistAddresses, p, nil)
}

func (h *handler) buyers(c echo.Context) error {
	args := map[string]interface{}{
		"collection": c.Param("collection"),
		"tokenId":    c.Param("tokenId"),
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetBuyerWhitelist, args, nil)
}

func (h *handler) isBuyerWhitelisted(c echo.Context) error {
	args := map[string]interface{}{
		"collection": c.Param("collection"),
		"tokenId":    c.Param("tokenId"),
		"buyer":      c.Param("buyer"),
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigIsBuyerWhitelisted, args, nil)
}
