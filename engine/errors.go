/*
errors.go - Error taxonomy of the compensation engine

PURPOSE:
  The engine never fails on a single bad record. Malformed inputs degrade
  their own contribution to zero and the computation continues. The types
  below exist so that host layers can REPORT what was degraded (Inspect,
  factory.MissingFields) and map it to user-facing messages.

ERROR CATEGORIES:
  1. MalformedTimeValue      - unparseable or partial "HH:MM" clock string
  2. MissingSettingsField    - settings field absent, documented default used
  3. ConflictingDayFlags     - entry flagged both fixed and standby
  4. NegativeOrDegenerate    - negative amount or percent clamped to zero
  5. SettingsRequired        - the only fatal condition (no settings at all)

USAGE:
  for _, issue := range engine.Inspect(entry, cls) {
      if errors.Is(issue, engine.ErrMalformedTimeValue) {
          ...
      }
  }

SEE ALSO:
  - inspect.go: Produces these errors for an entry
  - factory/settings.go: Produces MissingFieldError
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedTimeValue marks a clock string that could not be parsed.
	// The interval it belongs to contributes zero duration.
	ErrMalformedTimeValue = errors.New("malformed time value")

	// ErrMissingSettingsField marks a settings field resolved from its default.
	ErrMissingSettingsField = errors.New("missing settings field")

	// ErrConflictingDayFlags marks an entry with more than one day-type flag.
	// Resolved by precedence Fixed > Standby > Ordinary.
	ErrConflictingDayFlags = errors.New("conflicting day flags")

	// ErrNegativeDuration marks a negative or degenerate value clamped to zero.
	ErrNegativeDuration = errors.New("negative or degenerate value")

	// ErrSettingsRequired is returned when no settings are supplied at all.
	ErrSettingsRequired = errors.New("settings required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TimeValueError reports a malformed clock string on a named field.
type TimeValueError struct {
	Date  TimePoint
	Field string // e.g. "shifts[0].start", "interventions[1].travel.return.end"
	Value string
}

func (e *TimeValueError) Error() string {
	return fmt.Sprintf("malformed time %q at %s on %s", e.Value, e.Field, e.Date)
}

func (e *TimeValueError) Unwrap() error { return ErrMalformedTimeValue }

// MissingFieldError reports a settings field that fell back to its default.
type MissingFieldError struct {
	Field   string
	Default string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("settings field %s missing, using default %s", e.Field, e.Default)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingSettingsField }

// DayFlagsError reports an entry carrying more than one day-type flag.
type DayFlagsError struct {
	Date     TimePoint
	Resolved DayKind
}

func (e *DayFlagsError) Error() string {
	return fmt.Sprintf("entry %s flagged both fixed and standby, resolved as %s", e.Date, e.Resolved)
}

func (e *DayFlagsError) Unwrap() error { return ErrConflictingDayFlags }

// ClampedValueError reports a negative or out-of-range value that was clamped.
type ClampedValueError struct {
	Date  TimePoint
	Field string
	Value string
}

func (e *ClampedValueError) Error() string {
	return fmt.Sprintf("value %s at %s on %s clamped", e.Value, e.Field, e.Date)
}

func (e *ClampedValueError) Unwrap() error { return ErrNegativeDuration }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInputIssue returns true if the error describes degraded entry input.
func IsInputIssue(err error) bool {
	return errors.Is(err, ErrMalformedTimeValue) ||
		errors.Is(err, ErrConflictingDayFlags) ||
		errors.Is(err, ErrNegativeDuration)
}
