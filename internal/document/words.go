package document

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrAmountTooLarge is returned when the magnitude exceeds the supported
// word scale (trillions). The hard ceiling is 10^15 dollars.
var ErrAmountTooLarge = errors.New("document: amount exceeds supported word scale")

var (
	onesWords = []string{
		"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tensWords = []string{
		"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
	}
	scaleWords = []string{"", "Thousand", "Million", "Billion", "Trillion"}
)

const maxWordDollars = int64(1_000_000_000_000_000) // 10^15

// AmountInWords renders an amount as English words with a Dollars suffix and
// a Cents clause when the fractional part is non-zero. The amount is rounded
// to two decimal places first. Negative amounts carry a Minus prefix; zero is
// "Zero Dollars Only".
func AmountInWords(amount decimal.Decimal) (string, error) {
	rounded := amount.Round(2)
	negative := rounded.Sign() < 0
	if negative {
		rounded = rounded.Neg()
	}

	dollars := rounded.IntPart()
	cents := rounded.Sub(decimal.NewFromInt(dollars)).Mul(decimal.NewFromInt(100)).IntPart()

	if dollars >= maxWordDollars {
		return "", ErrAmountTooLarge
	}

	var b strings.Builder
	if negative {
		b.WriteString("Minus ")
	}
	if dollars == 0 {
		b.WriteString("Zero")
	} else {
		b.WriteString(integerWords(dollars))
	}
	b.WriteString(" Dollars")
	if cents > 0 {
		b.WriteString(" and ")
		b.WriteString(integerWords(cents))
		b.WriteString(" Cents")
	}
	b.WriteString(" Only")
	return b.String(), nil
}

// integerWords spells a positive integer below 10^15 grouped by thousands.
func integerWords(n int64) string {
	var groups []string
	scale := 0
	for n > 0 {
		group := n % 1000
		if group > 0 {
			part := hundredsWords(int(group))
			if scaleWords[scale] != "" {
				part += " " + scaleWords[scale]
			}
			groups = append([]string{part}, groups...)
		}
		n /= 1000
		scale++
	}
	return strings.Join(groups, " ")
}

func hundredsWords(n int) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, onesWords[n/100], "Hundred")
		n %= 100
	}
	if n >= 20 {
		parts = append(parts, tensWords[n/10])
		n %= 10
	}
	if n > 0 {
		parts = append(parts, onesWords[n])
	}
	return strings.Join(parts, " ")
}
