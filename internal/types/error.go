package types

import (
	"errors"
	"net/http"
)

type ErrorCode string

func (e ErrorCode) String() string {
	return string(e)
}

const (
	// InternalServiceError is the error code for internal service errors
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	// ValidationError covers malformed input: zero quantity, empty account,
	// unknown asset, mismatched batch lengths
	ValidationError ErrorCode = "VALIDATION_ERROR"
	// NotFound is the error code when a requested entity does not exist
	NotFound ErrorCode = "NOT_FOUND"
	// InsufficientBalance is returned when a spend exceeds the spendable balance
	InsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	// SupplyCapExceeded is returned when a mint would push supply past maxSupply
	SupplyCapExceeded ErrorCode = "SUPPLY_CAP_EXCEEDED"
	// QuotaExceeded is returned when a mint would exceed the daily mint limit
	QuotaExceeded ErrorCode = "QUOTA_EXCEEDED"
	// TradingDisabled is returned when listing an asset with trading turned off
	TradingDisabled ErrorCode = "TRADING_DISABLED"
	// ListingClosed is returned when purchasing from an inactive or exhausted listing
	ListingClosed ErrorCode = "LISTING_CLOSED"
	// SelfTrade is returned when a buyer attempts to fill their own listing
	SelfTrade ErrorCode = "SELF_TRADE"
	// Unauthorized is returned when the caller lacks the required role
	Unauthorized ErrorCode = "UNAUTHORIZED"
)

// Error wraps a failure with the HTTP status it maps to and a stable error
// code. Every rejected operation carries exactly one of these; rejections are
// terminal and leave no partial state behind.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		Err:        err,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

func NewInternalServiceError(err error) *Error {
	return NewError(http.StatusInternalServerError, InternalServiceError, err)
}

func NewValidationFailedError(err error) *Error {
	return NewError(http.StatusBadRequest, ValidationError, err)
}

func NewNotFoundError(err error) *Error {
	return NewError(http.StatusNotFound, NotFound, err)
}

func NewInsufficientBalanceError(err error) *Error {
	return NewError(http.StatusConflict, InsufficientBalance, err)
}

func NewSupplyCapExceededError(err error) *Error {
	return NewError(http.StatusConflict, SupplyCapExceeded, err)
}

func NewQuotaExceededError(err error) *Error {
	return NewError(http.StatusTooManyRequests, QuotaExceeded, err)
}

func NewTradingDisabledError(err error) *Error {
	return NewError(http.StatusConflict, TradingDisabled, err)
}

func NewListingClosedError(err error) *Error {
	return NewError(http.StatusConflict, ListingClosed, err)
}

func NewSelfTradeError(err error) *Error {
	return NewError(http.StatusConflict, SelfTrade, err)
}

func NewUnauthorizedError(err error) *Error {
	return NewError(http.StatusForbidden, Unauthorized, err)
}
