package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/delivery"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/token"
	authMiddleware "github.com/ideationmarket/goapi/stores/auth/delivery/http/middleware"
)

// handler serves the asset ledger the marketplace settles against.
// These endpoints model collection contract calls, so they bypass the
// proxy routing table.
type handler struct {
	tokens token.Usecase
}

func New(e *echo.Echo, tokens token.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{tokens}

	g := e.Group("/tokens")

	g.POST("/mint", h.mint, authMiddleware.Auth())
	g.POST("/approvals", h.setApprovalForAll, authMiddleware.Auth())

	g.GET("/:collection/:tokenId/owner", h.ownerOf)
	g.GET("/:collection/:tokenId/balance/:holder", h.balanceOf)
	g.GET("/:collection/approvals/:holder/:operator", h.isApprovedForAll)
}

func (h *handler) mint(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type payload struct {
		Collection domain.Address   `json:"collection" validate:"required"`
		TokenId    domain.TokenId   `json:"tokenId" validate:"required"`
		TokenType  domain.TokenType `json:"tokenType"`
		Amount     uint64           `json:"amount"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	t := &token.Token{
		Collection: p.Collection,
		TokenId:    p.TokenId,
		TokenType:  p.TokenType,
		Owner:      caller,
	}
	if err := h.tokens.Mint(context, t, p.Amount); err != nil {
		context.WithField("err", err).Error("token.Mint failed")
		return delivery.MakeJsonResp(c, delivery.StatusFor(err, http.StatusInternalServerError), err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, t)
}

func (h *handler) setApprovalForAll(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type payload struct {
		Collection domain.Address `json:"collection" validate:"required"`
		Operator   domain.Address `json:"operator" validate:"required"`
		Approved   bool           `json:"approved"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.tokens.SetApprovalForAll(context, caller, p.Collection, p.Operator, p.Approved); err != nil {
		context.WithField("err", err).Error("token.SetApprovalForAll failed")
		return delivery.MakeJsonResp(c, delivery.StatusFor(err, http.StatusInternalServerError), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) ownerOf(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	owner, err := h.tokens.OwnerOf(context, domain.Address(c.Param("collection")), domain.TokenId(c.Param("tokenId")))
	if err != nil {
		return delivery.MakeJsonResp(c, delivery.StatusFor(err, http.StatusInternalServerError), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, owner)
}

func (h *handler) balanceOf(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	balance, err := h.tokens.BalanceOf(context, domain.Address(c.Param("collection")), domain.TokenId(c.Param("tokenId")), domain.Address(c.Param("holder")))
	if err != nil {
		return delivery.MakeJsonResp(c, delivery.StatusFor(err, http.StatusInternalServerError), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, balance)
}

func (h *handler) isApprovedForAll(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	approved, err := h.tokens.IsApprovedForAll(context, domain.Address(c.Param("collection")), domain.Address(c.Param("holder")), domain.Address(c.Param("operator")))
	if err != nil {
		return delivery.MakeJsonResp(c, delivery.StatusFor(err, http.StatusInternalServerError), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, approved)
}
