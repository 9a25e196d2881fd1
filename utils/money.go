package utils

import (
	"strconv"
	"strings"
)

// FormatUSD formats an amount in cents as a string like "$1,250.00".
func FormatUSD(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	dollars := strconv.FormatInt(cents/100, 10)
	rest := cents % 100

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + cents
	b.Grow(len(dollars) + len(dollars)/3 + 5)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	// Insert separators from the left.
	first := len(dollars) % 3
	if first == 0 {
		first = 3
	}
	b.WriteString(dollars[:first])
	for i := first; i < len(dollars); i += 3 {
		b.WriteByte(',')
		b.WriteString(dollars[i : i+3])
	}

	b.WriteByte('.')
	if rest < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(rest, 10))
	return b.String()
}
