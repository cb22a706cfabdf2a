package service

import "errors"

var (
	ErrInsufficientData   = errors.New("insufficient historical data")
	ErrInvalidHorizon     = errors.New("invalid forecast horizon")
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrNotFound           = errors.New("not found")
)

// Reason codes reported in failed call results.
const (
	CodeInsufficientData   = "ERR_INSUFFICIENT_DATA"
	CodeInvalidHorizon     = "ERR_INVALID_HORIZON"
	CodeInvalidParameter   = "ERR_INVALID_PARAMETER"
	CodeArithmeticOverflow = "ERR_ARITHMETIC_OVERFLOW"
	CodeNotFound           = "ERR_NOT_FOUND"
	CodeInternal           = "ERR_INTERNAL"
)

// Code maps err onto its reason code. Unknown errors map to CodeInternal.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientData):
		return CodeInsufficientData
	case errors.Is(err, ErrInvalidHorizon):
		return CodeInvalidHorizon
	case errors.Is(err, ErrInvalidParameter):
		return CodeInvalidParameter
	case errors.Is(err, ErrArithmeticOverflow):
		return CodeArithmeticOverflow
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}
