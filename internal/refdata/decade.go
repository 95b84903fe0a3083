package refdata

import (
	"fmt"
	"strconv"
	"strings"
)

// Supported historical range. Years outside it are clamped before any
// table lookup, so statistics near the edges are extrapolated from the
// nearest modeled decade.
const (
	MinYear = 1950
	MaxYear = 2120
)

// ClampYear clamps year into [MinYear, MaxYear].
func ClampYear(year int) int {
	if year < MinYear {
		return MinYear
	}
	if year > MaxYear {
		return MaxYear
	}
	return year
}

// DecadeOf returns the decade bucket for year after clamping it into the
// supported range.
func DecadeOf(year int) int {
	return floorDecade(ClampYear(year))
}

// DecadeLabel renders a decade as it appears in the tables, e.g. "1950s".
func DecadeLabel(decade int) string {
	return fmt.Sprintf("%ds", decade)
}

// ParseDecade accepts "1950s" or "1950" (and years inside the decade,
// e.g. "1957") and returns the decade start.
func ParseDecade(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "s")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid decade %q", s)
	}
	return floorDecade(n), nil
}

func floorDecade(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}
