package controllers

import "errors"

// Business-rule violations surfaced verbatim to the caller. Anything not in
// this list collapses to errUnexpected's message so internals never leak.
var (
	errInsufficientFunds    = errors.New("insufficient balance")
	errInsufficientHoldings = errors.New("insufficient holdings")
	errNotHolding           = errors.New("not holding this security")
	errAccountNotFound      = errors.New("account not found")
)

const genericTradeError = "an unexpected error occurred, please try again"
