package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateSuffix is appended to invoice numbers, derived from the issue date.
func dateSuffix(issuedAt time.Time) string {
	return "A/" + issuedAt.Format("0201")
}

// NextNumber computes the next sequential document number for a kind given
// the last issued number. It is deterministic; uniqueness under concurrent
// issuance is the persistence layer's concern (unique constraint plus one
// retry in the repository).
//
// Invoices carry a date-derived suffix: CD-0004A/0101 -> CD-0005A/<DDMM>.
// Memos are plain: MO-0011 -> MO-0012. With no prior number the sequence
// seeds at 0001.
func NextNumber(kind Kind, last string, issuedAt time.Time) (string, error) {
	if last == "" {
		number := kind.Prefix() + "-0001"
		if kind == KindInvoice {
			number += dateSuffix(issuedAt)
		}
		return number, nil
	}

	dash := strings.IndexByte(last, '-')
	if dash < 0 || dash == len(last)-1 {
		return "", fmt.Errorf("document: malformed number %q", last)
	}
	prefix := last[:dash]

	digits := 0
	for _, r := range last[dash+1:] {
		if r < '0' || r > '9' {
			break
		}
		digits++
	}
	if digits == 0 {
		return "", fmt.Errorf("document: no numeric suffix in %q", last)
	}

	seq, err := strconv.ParseInt(last[dash+1:dash+1+digits], 10, 64)
	if err != nil {
		return "", fmt.Errorf("document: parse numeric suffix of %q: %w", last, err)
	}

	number := fmt.Sprintf("%s-%0*d", prefix, digits, seq+1)
	if kind == KindInvoice {
		number += dateSuffix(issuedAt)
	}
	return number, nil
}
