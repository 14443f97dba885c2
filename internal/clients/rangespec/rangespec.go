// Package rangespec interprets Yahoo-style history ranges ("5d", "6mo", "1y", "max").
package rangespec

import (
	"strconv"
	"strings"
	"time"
)

// Start returns the first date covered by rng counting back from now, or the
// zero time for "max" and unrecognised ranges.
func Start(now time.Time, rng string) time.Time {
	n, unit := split(strings.ToLower(strings.TrimSpace(rng)))
	if n <= 0 {
		return time.Time{}
	}
	switch unit {
	case "d":
		return now.AddDate(0, 0, -n)
	case "wk":
		return now.AddDate(0, 0, -7*n)
	case "mo":
		return now.AddDate(0, -n, 0)
	case "y":
		return now.AddDate(-n, 0, 0)
	case "ytd":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// Valid reports whether rng is a range Start understands, including "max".
func Valid(rng string) bool {
	rng = strings.ToLower(strings.TrimSpace(rng))
	if rng == "max" || rng == "ytd" {
		return true
	}
	n, unit := split(rng)
	if n <= 0 {
		return false
	}
	switch unit {
	case "d", "wk", "mo", "y":
		return true
	}
	return false
}

func split(rng string) (int, string) {
	if rng == "ytd" {
		return 1, "ytd"
	}
	i := 0
	for i < len(rng) && rng[i] >= '0' && rng[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, rng
	}
	n, err := strconv.Atoi(rng[:i])
	if err != nil {
		return 0, ""
	}
	return n, rng[i:]
}
