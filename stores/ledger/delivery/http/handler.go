package http

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/delivery"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/ledger"
	authMiddleware "github.com/ideationmarket/goapi/stores/auth/delivery/http/middleware"
)

// handler serves the fungible ledger: deposits, approvals and balance
// queries. These model currency contract calls, outside the proxy
// routing table.
type handler struct {
	ledger ledger.Usecase
}

func New(e *echo.Echo, ledger ledger.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{ledger}

	g := e.Group("/ledger")

	g.POST("/deposit", h.deposit, authMiddleware.Auth())
	g.POST("/approve", h.approve, authMiddleware.Auth())

	g.GET("/:currency/balance/:account", h.balanceOf)
	g.GET("/:currency/allowance/:account/:spender", h.allowance)
}

func parseAmount(amount string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok || v.Sign() < 0 {
		return nil, domain.ErrBadParamInput
	}
	return v, nil
}

func (h *handler) deposit(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type payload struct {
		Currency domain.Address `json:"currency"`
		Amount   string         `json:"amount" validate:"required"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	amount, err := parseAmount(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.ledger.Deposit(context, p.Currency, caller, amount); err != nil {
		context.WithField("err", err).Error("ledger.Deposit failed")
		return delivery.MakeJsonResp(c, delivery.StatusFor(err, http.StatusInternalServerError), err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}

func (h *handler) approve(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type payload struct {
		Currency domain.Address `json:"currency"`
		Spender  domain.Address `json:"spender" validate:"required"`
		Amount   string         `json:"amount" validate:"required"`
	}

	p := &payload{}
	if err := c.Bind(p); err != nil {
		context.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	amount, err := parseAmount(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.ledger.Approve(context, caller, p.Currency, p.Spender, amount); err != nil {
		context.WithField("err", err).Error("ledger.Approve failed")
		return delivery.MakeJsonResp(c, delivery.StatusFor(err, http.StatusInternalServerError), err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}

func (h *handler) balanceOf(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	balance, err := h.ledger.BalanceOf(context, domain.Address(c.Param("currency")), domain.Address(c.Param("account")))
	if err != nil {
		return delivery.MakeJsonResp(c, delivery.StatusFor(err, http.StatusInternalServerError), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, balance.String())
}

func (h *handler) allowance(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)

	allowance, err := h.ledger.GetAllowance(context, domain.Address(c.Param("currency")), domain.Address(c.Param("account")), domain.Address(c.Param("spender")))
	if err != nil {
		return delivery.MakeJsonResp(c, delivery.StatusFor(err, http.StatusInternalServerError), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, allowance.String())
}
