package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextNumberInvoice(t *testing.T) {
	issued := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	got, err := NextNumber(KindInvoice, "CD-0004A/0101", issued)
	require.NoError(t, err)
	require.Equal(t, "CD-0005A/1403", got)
}

func TestNextNumberMemo(t *testing.T) {
	got, err := NextNumber(KindMemo, "MO-0011", time.Now())
	require.NoError(t, err)
	require.Equal(t, "MO-0012", got)
}

func TestNextNumberSeed(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := NextNumber(KindInvoice, "", issued)
	require.NoError(t, err)
	require.Equal(t, "CD-0001A/0101", got)

	got, err = NextNumber(KindMemo, "", issued)
	require.NoError(t, err)
	require.Equal(t, "MO-0001", got)
}

func TestNextNumberPreservesWidth(t *testing.T) {
	got, err := NextNumber(KindMemo, "MO-099", time.Now())
	require.NoError(t, err)
	require.Equal(t, "MO-100", got)

	// Width grows when the sequence outruns its padding.
	got, err = NextNumber(KindMemo, "MO-999", time.Now())
	require.NoError(t, err)
	require.Equal(t, "MO-1000", got)
}

func TestNextNumberDeterministic(t *testing.T) {
	issued := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	a, err := NextNumber(KindInvoice, "CD-0120A/2906", issued)
	require.NoError(t, err)
	b, err := NextNumber(KindInvoice, "CD-0120A/2906", issued)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestNextNumberMalformed(t *testing.T) {
	_, err := NextNumber(KindInvoice, "garbage", time.Now())
	require.Error(t, err)

	_, err = NextNumber(KindInvoice, "CD-", time.Now())
	require.Error(t, err)

	_, err = NextNumber(KindInvoice, "CD-X123", time.Now())
	require.Error(t, err)
}
