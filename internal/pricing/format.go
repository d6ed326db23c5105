package pricing

import (
	"math"
	"strconv"
)

// FormatINR renders a rupee amount rounded to whole rupees with Indian digit
// grouping, e.g. 260000 -> "₹2,60,000".
func FormatINR(amount float64) string {
	n := int64(math.Round(amount))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return sign + "₹" + s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)

	out := ""
	for _, g := range groups {
		out += g + ","
	}
	return sign + "₹" + out + tail
}
