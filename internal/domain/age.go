package domain

import (
	"strconv"
	"strings"
)

// AgeInterval is the parsed form of a book's character age field.
// Open intervals ("40+") have no upper bound; Hi is meaningless when Open is set.
type AgeInterval struct {
	Lo   int
	Hi   int
	Open bool
}

// DefaultAgeOptions is the fallback slider scale used when no ages are
// parseable from the active catalog subset.
var DefaultAgeOptions = []int{18, 20, 25, 30, 35, 40, 45, 50}

// ParseAgeInterval parses the free-text character age field.
// Recognized forms:
//
//	"20-30" -> [20,30]
//	"40+"   -> [40,∞)
//	"25"    -> [25,25]
//
// Anything else ("разные", "старше 40", empty) is unparsable and returns false.
func ParseAgeInterval(s string) (AgeInterval, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AgeInterval{}, false
	}

	if lo, hi, found := strings.Cut(s, "-"); found {
		a, err1 := strconv.Atoi(strings.TrimSpace(lo))
		b, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil {
			return AgeInterval{}, false
		}
		return AgeInterval{Lo: a, Hi: b}, true
	}

	if base, found := strings.CutSuffix(s, "+"); found {
		a, err := strconv.Atoi(strings.TrimSpace(base))
		if err != nil {
			return AgeInterval{}, false
		}
		return AgeInterval{Lo: a, Open: true}, true
	}

	a, err := strconv.Atoi(s)
	if err != nil {
		return AgeInterval{}, false
	}
	return AgeInterval{Lo: a, Hi: a}, true
}

// Intersects reports whether the interval overlaps the closed range [lo, hi].
func (i AgeInterval) Intersects(lo, hi int) bool {
	if i.Open {
		return i.Lo <= hi
	}
	return !(i.Hi < lo || i.Lo > hi)
}

// OptionPoints returns the representative ages this interval contributes to
// the discrete slider scale: endpoints plus the midpoint for closed ranges,
// the base age plus base+10 for open-ended ones.
func (i AgeInterval) OptionPoints() []int {
	if i.Open {
		return []int{i.Lo, i.Lo + 10}
	}
	if i.Lo == i.Hi {
		return []int{i.Lo}
	}
	return []int{i.Lo, i.Hi, (i.Lo + i.Hi) / 2}
}
