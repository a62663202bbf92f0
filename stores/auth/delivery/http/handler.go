package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/delivery"
	"github.com/ideationmarket/goapi/domain"
)

type authHandler struct {
	auth       domain.AuthUsecase
	signingMsg string
}

func New(e *echo.Echo, auth domain.AuthUsecase, signingMsg string) {
	handler := &authHandler{
		auth:       auth,
		signingMsg: signingMsg,
	}
	g := e.Group("/auth")
	g.POST("/sign", handler.sign)
	g.GET("/signingMsg", handler.getSigningMsg)
}

// sign exchanges a personal-sign signature of the signing message for a
// bearer token bound to the signer's address.
func (h *authHandler) sign(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address   domain.Address `json:"address" validate:"required"`
		Signature string         `json:"signature" validate:"required"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return c.JSON(http.StatusUnprocessableEntity, err)
	}

	if tkn, err := h.auth.SignToken(ctx, p.Address, p.Signature); err != nil {
		ctx.WithField("err", err).Error("auth.SignToken failed")
		return delivery.MakeJsonResp(c, http.StatusUnauthorized, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, tkn)
	}
}

func (h *authHandler) getSigningMsg(c echo.Context) error {
	res := struct {
		Msg string `json:"message"`
	}{
		Msg: h.signingMsg,
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
