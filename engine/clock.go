package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLOCK - Time of day in minutes since midnight
// =============================================================================

const minutesPerDay = 24 * 60

var sixty = decimal.NewFromInt(60)

// Clock is a time of day expressed in minutes since midnight, in [0, 1440).
type Clock int

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60) }

// ParseClock parses "HH:MM", "H:MM" or "HH:MM:SS" (seconds ignored).
// "24:00" is accepted and normalized to midnight. Blank input is not an
// error for callers that treat absence as zero; use IsBlankClock to tell
// the two cases apart.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimeValue, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimeValue, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimeValue, s)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTimeValue, s)
		}
	}
	switch {
	case h == 24 && m == 0:
		return 0, nil
	case h < 0 || h > 23 || m < 0 || m > 59:
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimeValue, s)
	}
	return Clock(h*60 + m), nil
}

// IsBlankClock reports whether a clock field was left empty.
func IsBlankClock(s string) bool { return strings.TrimSpace(s) == "" }

// =============================================================================
// INTERVAL - Raw start/end pair as entered by the user
// =============================================================================

// Interval is a start/end pair of clock strings. Either side may be empty.
type Interval struct {
	Start string `json:"start,omitempty" toml:"start"`
	End   string `json:"end,omitempty" toml:"end"`
}

// Span is an interval resolved onto the day timeline: From is in [0, 1440)
// and To is in (From, From+1440). To beyond 1440 means the interval rolled
// over midnight.
type Span struct {
	From int
	To   int
}

func (s Span) Minutes() int { return s.To - s.From }

// Span resolves the interval. It returns false when either side is absent
// or malformed, or when start equals end.
func (iv Interval) Span() (Span, bool) {
	start, err := ParseClock(iv.Start)
	if err != nil {
		return Span{}, false
	}
	end, err := ParseClock(iv.End)
	if err != nil {
		return Span{}, false
	}
	from, to := int(start), int(end)
	if to == from {
		return Span{}, false
	}
	if to < from {
		to += minutesPerDay
	}
	return Span{From: from, To: to}, true
}

// IsSet reports whether both sides parse.
func (iv Interval) IsSet() bool {
	_, errStart := ParseClock(iv.Start)
	_, errEnd := ParseClock(iv.End)
	return errStart == nil && errEnd == nil
}

// Minutes returns the interval length; 0 when absent or malformed.
func (iv Interval) Minutes() int {
	span, ok := iv.Span()
	if !ok {
		return 0
	}
	return span.Minutes()
}

// Hours returns the interval length in fractional hours.
func (iv Interval) Hours() decimal.Decimal { return hoursFromMinutes(iv.Minutes()) }

// Duration is the time-interval calculator: hours between two clock strings,
// rolling over midnight when end < start. Never fails; absent or malformed
// sides contribute zero. The result is always in [0, 24).
func Duration(start, end string) decimal.Decimal {
	return Interval{Start: start, End: end}.Hours()
}

// TotalMinutes sums the minutes of all intervals.
func TotalMinutes(ivs []Interval) int {
	total := 0
	for _, iv := range ivs {
		total += iv.Minutes()
	}
	return total
}

func hoursFromMinutes(m int) decimal.Decimal {
	if m <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(m)).Div(sixty)
}
