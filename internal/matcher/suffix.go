package matcher

import (
	"fmt"
	"strconv"
	"strings"
)

// suffix holds the parsed trailing modifiers of a matcher span.
//
// The grammar is ordered and regular: "?" first, then one of "+" or
// "{min,max}", then "dN". A leading "!" (or "!!") instead escapes the span
// into a literal and is exclusive with the modifiers. Anything past the
// recognized modifiers is ordinary literal text and is left alone.
type suffix struct {
	optional bool
	min      int
	max      int
	hasCount bool
	depth    int
	escape   int
	// length is the number of bytes consumed from the adjacent text.
	length int
}

func parseSuffix(trailing string) (suffix, error) {
	var s suffix
	rest := trailing
	consume := func(n int) {
		rest = rest[n:]
		s.length += n
	}

	if strings.HasPrefix(rest, "!") {
		n := 1
		if strings.HasPrefix(rest[1:], "!") {
			n = 2
		}
		s.escape = n
		consume(n)
		return s, nil
	}

	if strings.HasPrefix(rest, "?") {
		s.optional = true
		consume(1)
	}

	switch {
	case strings.HasPrefix(rest, "+"):
		s.min, s.max = 1, Unbounded
		s.hasCount = true
		consume(1)
	case strings.HasPrefix(rest, "{"):
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return s, fmt.Errorf("unclosed count in matcher suffix %q", firstWord(trailing))
		}
		min, max, err := parseCount(rest[1:end])
		if err != nil {
			return s, fmt.Errorf("invalid count in matcher suffix %q: %w", rest[:end+1], err)
		}
		s.min, s.max = min, max
		s.hasCount = true
		consume(end + 1)
	}

	if len(rest) >= 2 && rest[0] == 'd' && isDigit(rest[1]) {
		digits := 1
		for digits+1 < len(rest) && isDigit(rest[digits+1]) {
			digits++
		}
		n, err := strconv.Atoi(rest[1 : digits+1])
		if err != nil {
			return s, fmt.Errorf("invalid depth in matcher suffix %q: %w", rest[:digits+1], err)
		}
		s.depth = n
		consume(digits + 1)
	}

	return s, nil
}

// parseCount parses the interior of a {min,max} count. Empty min means 0;
// empty max means unbounded.
func parseCount(interior string) (int, int, error) {
	minStr, maxStr, ok := strings.Cut(interior, ",")
	if !ok {
		return 0, 0, fmt.Errorf("count must contain a comma, got {%s}", interior)
	}
	min, max := 0, Unbounded
	if minStr != "" {
		n, err := strconv.Atoi(minStr)
		if err != nil {
			return 0, 0, err
		}
		min = n
	}
	if maxStr != "" {
		n, err := strconv.Atoi(maxStr)
		if err != nil {
			return 0, 0, err
		}
		max = n
	}
	if max != Unbounded && max < min {
		return 0, 0, fmt.Errorf("count max %d below min %d", max, min)
	}
	return min, max, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
