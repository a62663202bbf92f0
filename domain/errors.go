package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// authorization errors
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotOwner        = errors.New("caller is not the contract owner")
	ErrNotPendingOwner = errors.New("caller is not the pending owner")
	ErrNotSeller       = errors.New("caller is not the listing seller")
	ErrNotWhitelisted  = errors.New("caller is not whitelisted")

	// dispatch and upgrade errors
	ErrFunctionNotFound      = errors.New("function does not exist")
	ErrInvalidFacetCutAction = errors.New("invalid facet cut action")
	ErrSelectorAlreadyBound  = errors.New("selector is already bound to a facet")
	ErrSelectorNotBound      = errors.New("selector is not bound to any facet")
	ErrInitializerFailed     = errors.New("upgrade initializer failed")

	// state errors
	ErrPaused           = errors.New("contract is paused")
	ErrListingNotActive = errors.New("listing is not active")
	ErrAlreadyListed    = errors.New("token already has an active listing")
	ErrStillValid       = errors.New("listing preconditions still hold")

	// parameter errors
	ErrFeeTooHigh      = errors.New("fee exceeds the denominator")
	ErrBatchTooLarge   = errors.New("batch exceeds the maximum batch size")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidAddress  = errors.New("Invalid address")
	ErrInvalidSelector = errors.New("invalid selector")

	// payment errors
	ErrPaymentMismatch       = errors.New("supplied payment does not match the price")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientBalance   = errors.New("insufficient balance")

	// asset errors
	ErrNotTokenOwner     = errors.New("seller does not hold the token")
	ErrMissingApproval   = errors.New("marketplace is not approved for the token")
	ErrInvalidSignature  = errors.New("Invalid signature")
	ErrInvalidJsonFormat = errors.New("invalid JSON format")
)
