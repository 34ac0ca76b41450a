package utils_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rndosd/finclass/src/utils"
)

func TestRoundUSD(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"90.9", "90.9"},
		{"0.333", "0.33"},
		{"0.335", "0.34"},
		{"-0.335", "-0.34"},
		{"10", "10"},
		{"1.005", "1.01"},
	}
	for _, tc := range cases {
		got := utils.RoundUSD(decimal.RequireFromString(tc.in))
		assert.Equal(t, tc.want, got.String(), "RoundUSD(%s)", tc.in)
	}
}

func TestDecimalsEqual(t *testing.T) {
	assert.True(t, utils.DecimalsEqual(
		decimal.RequireFromString("1.50"), decimal.RequireFromString("1.5")))
	assert.False(t, utils.DecimalsEqual(
		decimal.RequireFromString("1.50"), decimal.RequireFromString("1.501")))
}
