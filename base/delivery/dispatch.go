package delivery

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ideationmarket/goapi/base/ctx"
	"github.com/ideationmarket/goapi/base/selector"
	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/domain/diamond"
)

// DispatchCall routes an http request through the proxy: the caller
// identity comes from the auth middleware, the selector from the
// operation's canonical signature, and the handler is whatever facet
// the registry currently binds.
func DispatchCall(c echo.Context, d diamond.Dispatcher, signature string, args interface{}, value *big.Int) error {
	context := c.Get("ctx").(ctx.Ctx)

	caller := domain.EmptyAddress
	if ads, ok := c.Get("address").(domain.Address); ok {
		caller = ads.ToLower()
	}

	res, err := d.Dispatch(context, &diamond.Call{
		Caller:   caller,
		Value:    value,
		Selector: selector.FromSignature(signature),
		Args:     args,
	})
	if err != nil {
		context.WithField("err", err).Error("dispatcher.Dispatch failed")
		return MakeJsonResp(c, StatusFor(err, http.StatusInternalServerError), err)
	}
	return MakeJsonResp(c, http.StatusOK, res)
}
