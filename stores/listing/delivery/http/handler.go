package http

import (
	"math/big"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/delivery"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
	"github.com/ideationmarket/goapi/domain/listing"
	"github.com/ideationmarket/goapi/middleware"
	"github.com/ideationmarket/goapi/stores/listing/facet"
	authMiddleware "github.com/ideationmarket/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	dispatcher diamond.Dispatcher
}

func New(e *echo.Echo, dispatcher diamond.Dispatcher, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{dispatcher}

	g := e.Group("/listings")

	g.POST("", h.createListing, authMiddleware.Auth())
	g.PUT("", h.updateListing, authMiddleware.Auth())
	g.POST("/:listingId/purchase", h.purchaseListing, authMiddleware.Auth())
	g.DELETE("/:listingId", h.cancelListing, authMiddleware.Auth())
	g.POST("/:listingId/clean", h.cleanListing, authMiddleware.OptionalAuth())
	g.POST("/cleanSweep", h.cleanSweep, authMiddleware.OptionalAuth())

	g.GET("", h.getListings, middleware.CacheHttp(5*time.Second))
	g.GET("/:listingId", h.getListing)
	g.GET("/:listingId/displayPrice", h.displayPrice)
	g.GET("/token/:collection/:tokenId", h.getListingByToken)
	g.GET("/nextListingId", h.getNextListingId)
}

func (h *handler) createListing(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &listing.CreateListingPayload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigCreateListing, p, nil)
}

func (h *handler) updateListing(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &listing.UpdateListingPayload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigUpdateListing, p, nil)
}

func (h *handler) purchaseListing(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		ListingId uint64 `param:"listingId"`
		// Value is the attached native payment in the currency's
		// smallest unit; omitted for currency-denominated listings
		Value string `json:"value"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	var value *big.Int
	if p.Value != "" {
		v, ok := new(big.Int).SetString(p.Value, 10)
		if !ok || v.Sign() < 0 {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
		}
		value = v
	}

	args := map[string]interface{}{"listingId": p.ListingId}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigPurchaseListing, args, value)
}

type listingIdPayload struct {
	ListingId uint64 `param:"listingId"`
}

func (h *handler) cancelListing(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &listingIdPayload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	args := map[string]interface{}{"listingId": p.ListingId}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigCancelListing, args, nil)
}

func (h *handler) cleanListing(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &listingIdPayload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	args := map[string]interface{}{"listingId": p.ListingId}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigCleanListing, args, nil)
}

func (h *handler) cleanSweep(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigCleanSweep, nil, nil)
}

func (h *handler) getListings(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		Collection domain.Address `query:"collection"`
		Seller     domain.Address `query:"seller"`
		Offset     int            `query:"offset"`
		Limit      int            `query:"limit"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetListings, p, nil)
}

func (h *handler) getListing(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &listingIdPayload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	args := map[string]interface{}{"listingId": p.ListingId}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetListing, args, nil)
}

func (h *handler) displayPrice(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	p := &listingIdPayload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	args := map[string]interface{}{"listingId": p.ListingId}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigDisplayPrice, args, nil)
}

func (h *handler) getListingByToken(c echo.Context) error {
	args := map[string]interface{}{
		"collection": c.Param("collection"),
		"tokenId":    c.Param("tokenId"),
	}
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetListingByToken, args, nil)
}

func (h *handler) getNextListingId(c echo.Context) error {
	return delivery.DispatchCall(c, h.dispatcher, facet.SigGetNextListingId, nil, nil)
}
