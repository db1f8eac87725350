package document

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAmountInWords(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"0", "Zero Dollars Only"},
		{"0.00", "Zero Dollars Only"},
		{"1", "One Dollars Only"},
		{"5.00", "Five Dollars Only"},
		{"1234.56", "One Thousand Two Hundred Thirty Four Dollars and Fifty Six Cents Only"},
		{"100", "One Hundred Dollars Only"},
		{"115", "One Hundred Fifteen Dollars Only"},
		{"1000000", "One Million Dollars Only"},
		{"2500000.05", "Two Million Five Hundred Thousand Dollars and Five Cents Only"},
		{"1000000000", "One Billion Dollars Only"},
		{"999999999999", "Nine Hundred Ninety Nine Billion Nine Hundred Ninety Nine Million Nine Hundred Ninety Nine Thousand Nine Hundred Ninety Nine Dollars Only"},
		{"1000000000000", "One Trillion Dollars Only"},
		{"0.99", "Zero Dollars and Ninety Nine Cents Only"},
	}
	for _, tc := range cases {
		got, err := AmountInWords(decimal.RequireFromString(tc.amount))
		require.NoError(t, err, tc.amount)
		require.Equal(t, tc.want, got, "amount %s", tc.amount)
	}
}

func TestAmountInWordsNegative(t *testing.T) {
	neg, err := AmountInWords(decimal.RequireFromString("-5.00"))
	require.NoError(t, err)
	pos, err := AmountInWords(decimal.RequireFromString("5.00"))
	require.NoError(t, err)
	require.Equal(t, "Minus "+pos, neg)
}

func TestAmountInWordsRoundsFractionalCents(t *testing.T) {
	got, err := AmountInWords(decimal.RequireFromString("10.005"))
	require.NoError(t, err)
	require.Equal(t, "Ten Dollars and One Cents Only", got)
}

func TestAmountInWordsCeiling(t *testing.T) {
	// 10^15 - 0.01 is the largest supported amount.
	top := decimal.RequireFromString("999999999999999.99")
	got, err := AmountInWords(top)
	require.NoError(t, err)
	require.Contains(t, got, "Trillion")

	_, err = AmountInWords(decimal.RequireFromString("1000000000000000"))
	require.ErrorIs(t, err, ErrAmountTooLarge)

	_, err = AmountInWords(decimal.RequireFromString("-1000000000000000"))
	require.ErrorIs(t, err, ErrAmountTooLarge)
}
