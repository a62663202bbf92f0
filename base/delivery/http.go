package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ideationmarket/goapi/domain"
	"github.com/ideationmarket/goapi/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = StatusFor(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

// StatusFor maps domain errors onto http statuses, falling back to the
// handler's own choice for anything unclassified.
func StatusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, domain.ErrNotFound) || errors.Is(err, query.ErrNotFound) ||
		errors.Is(err, domain.ErrFunctionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotOwner) || errors.Is(err, domain.ErrNotPendingOwner) ||
		errors.Is(err, domain.ErrNotSeller) || errors.Is(err, domain.ErrNotWhitelisted):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrAlreadyListed) ||
		errors.Is(err, domain.ErrPaused) || errors.Is(err, domain.ErrStillValid) ||
		errors.Is(err, domain.ErrSelectorAlreadyBound) || errors.Is(err, domain.ErrSelectorNotBound):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBadParamInput) || errors.Is(err, domain.ErrInvalidJsonFormat) ||
		errors.Is(err, domain.ErrInvalidAddress) || errors.Is(err, domain.ErrInvalidSelector) ||
		errors.Is(err, domain.ErrInvalidPrice) || errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidCurrency) || errors.Is(err, domain.ErrInvalidFacetCutAction) ||
		errors.Is(err, domain.ErrFeeTooHigh) || errors.Is(err, domain.ErrBatchTooLarge) ||
		errors.Is(err, domain.ErrListingNotActive):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPaymentMismatch) || errors.Is(err, domain.ErrInsufficientBalance) ||
		errors.Is(err, domain.ErrInsufficientAllowance) || errors.Is(err, domain.ErrNotTokenOwner) ||
		errors.Is(err, domain.ErrMissingApproval):
		return http.StatusPaymentRequired
	default:
		return fallback
	}
}
