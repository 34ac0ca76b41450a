package utils

import (
	"github.com/shopspring/decimal"
)

// RoundUSD rounds a USD amount to cents, half away from zero. Stock trade
// totals go through this so stored balances never accumulate sub-cent
// residue. Exchange results are deliberately left unrounded: conversion
// output can be legitimately smaller than a cent.
func RoundUSD(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DecimalsEqual reports whether two decimals represent the same value,
// ignoring exponent representation.
func DecimalsEqual(a, b decimal.Decimal) bool {
	return a.Cmp(b) == 0
}
