package engine

import "fmt"

// Inspect lists what the engine will silently degrade for this entry:
// malformed or half-filled clock values, conflicting day flags and clamped
// amounts. It never changes the computation; hosts use it for warnings.
func Inspect(entry *WorkDayEntry, cls Classification) []error {
	if entry == nil {
		return nil
	}
	var issues []error
	if cls.Conflict {
		issues = append(issues, &DayFlagsError{Date: entry.Date, Resolved: cls.Kind})
	}

	issues = append(issues, inspectIntervals(entry.Date, "shifts", entry.Shifts)...)
	issues = append(issues, inspectIntervals(entry.Date, "travel", entry.Travel.legs())...)
	for i, iv := range entry.Interventions {
		prefix := fmt.Sprintf("interventions[%d]", i)
		issues = append(issues, inspectIntervals(entry.Date, prefix+".shifts", iv.Shifts)...)
		issues = append(issues, inspectIntervals(entry.Date, prefix+".travel", iv.Travel.legs())...)
	}

	if entry.FixedEarnings != nil && entry.FixedEarnings.IsNegative() {
		issues = append(issues, &ClampedValueError{Date: entry.Date, Field: "fixed_earnings", Value: entry.FixedEarnings.String()})
	}
	if p := entry.TravelAllowancePercent; p != nil && (p.IsNegative() || p.GreaterThan(one)) {
		issues = append(issues, &ClampedValueError{Date: entry.Date, Field: "travel_allowance_percent", Value: p.String()})
	}
	return issues
}

func inspectIntervals(date TimePoint, field string, ivs []Interval) []error {
	var issues []error
	for i, iv := range ivs {
		name := fmt.Sprintf("%s[%d]", field, i)
		startBlank, endBlank := IsBlankClock(iv.Start), IsBlankClock(iv.End)
		if startBlank && endBlank {
			continue
		}
		if _, err := ParseClock(iv.Start); err != nil {
			issues = append(issues, &TimeValueError{Date: date, Field: name + ".start", Value: iv.Start})
		}
		if _, err := ParseClock(iv.End); err != nil {
			issues = append(issues, &TimeValueError{Date: date, Field: name + ".end", Value: iv.End})
		}
	}
	return issues
}
