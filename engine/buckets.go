/*
buckets.go - Rate bucket resolver

PURPOSE:
  Splits a work or travel span at fixed clock boundaries and assigns each
  piece to one of seven pay buckets keyed by (day type, time band).

TIME BANDS:
  day      06:00 - 20:00
  evening  20:00 - 22:00
  night    22:00 - 06:00

BUCKETS:
                 day          evening      night
  weekday        ordinary     evening      night
  saturday       saturday     saturday     saturday_night
  sunday/holiday holiday      holiday      night_holiday

  A holiday that falls on a Saturday uses the holiday row. The whole span
  takes the classification of the entry date, also after a midnight
  rollover.

MULTIPLIERS:
  Each bucket has a multiplier from settings (BucketRates). Standby work and
  travel always use Settings.Standby.Rates; ordinary-day overtime uses
  Settings.Contract.OvertimeRates. Nothing is hard-coded here.
*/
package engine

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BANDS
// =============================================================================

type Band int

const (
	BandDay Band = iota
	BandEvening
	BandNight
)

const (
	dayBandStart     = 6 * 60
	eveningBandStart = 20 * 60
	nightBandStart   = 22 * 60
)

// bandAt returns the band of a minute on the (possibly rolled-over) timeline
// and the minute at which that band ends.
func bandAt(minute int) (Band, int) {
	base := minute - minute%minutesPerDay
	m := minute % minutesPerDay
	switch {
	case m < dayBandStart:
		return BandNight, base + dayBandStart
	case m < eveningBandStart:
		return BandDay, base + eveningBandStart
	case m < nightBandStart:
		return BandEvening, base + nightBandStart
	default:
		return BandNight, base + minutesPerDay + dayBandStart
	}
}

// =============================================================================
// BUCKETS
// =============================================================================

// Bucket is a pay-multiplier class.
type Bucket int

const (
	BucketOrdinary Bucket = iota
	BucketEvening
	BucketNight
	BucketHoliday
	BucketSaturday
	BucketSaturdayNight
	BucketNightHoliday
	numBuckets
)

var bucketNames = [numBuckets]string{
	"ordinary", "evening", "night", "holiday", "saturday", "saturday_night", "night_holiday",
}

// AllBuckets lists the buckets in their canonical order.
func AllBuckets() []Bucket {
	out := make([]Bucket, numBuckets)
	for i := range out {
		out[i] = Bucket(i)
	}
	return out
}

func (b Bucket) String() string {
	if b < 0 || b >= numBuckets {
		return "unknown"
	}
	return bucketNames[b]
}

// ParseBucket maps a bucket name back to its value.
func ParseBucket(name string) (Bucket, bool) {
	for i, n := range bucketNames {
		if n == name {
			return Bucket(i), true
		}
	}
	return 0, false
}

// BucketFor assigns a band on a classified day to its bucket.
func BucketFor(band Band, cls Classification) Bucket {
	switch {
	case cls.IsFestive():
		if band == BandNight {
			return BucketNightHoliday
		}
		return BucketHoliday
	case cls.IsSaturday:
		if band == BandNight {
			return BucketSaturdayNight
		}
		return BucketSaturday
	}
	switch band {
	case BandEvening:
		return BucketEvening
	case BandNight:
		return BucketNight
	default:
		return BucketOrdinary
	}
}

// Segment is the part of a span that falls into one bucket.
type Segment struct {
	Bucket  Bucket
	Minutes int
}

// SplitSpan cuts a span at band boundaries and assigns each piece a bucket.
// Adjacent pieces landing in the same bucket are not merged.
func SplitSpan(span Span, cls Classification) []Segment {
	var out []Segment
	for cur := span.From; cur < span.To; {
		band, bandEnd := bandAt(cur)
		end := min(bandEnd, span.To)
		out = append(out, Segment{Bucket: BucketFor(band, cls), Minutes: end - cur})
		cur = end
	}
	return out
}

// =============================================================================
// BUCKET RATES - Settings-driven multipliers
// =============================================================================

// BucketRates holds one multiplier per bucket.
type BucketRates [numBuckets]decimal.Decimal

// Multiplier returns the configured multiplier for a bucket.
func (r BucketRates) Multiplier(b Bucket) decimal.Decimal {
	if b < 0 || b >= numBuckets {
		return decimal.Zero
	}
	return r[b]
}

// With returns a copy with one multiplier replaced.
func (r BucketRates) With(b Bucket, m decimal.Decimal) BucketRates {
	if b >= 0 && b < numBuckets {
		r[b] = m
	}
	return r
}

func (r BucketRates) MarshalJSON() ([]byte, error) {
	m := make(map[string]decimal.Decimal, numBuckets)
	for i, v := range r {
		m[bucketNames[i]] = v
	}
	return json.Marshal(m)
}

func (r *BucketRates) UnmarshalJSON(b []byte) error {
	var m map[string]decimal.Decimal
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for name, v := range m {
		if bucket, ok := ParseBucket(name); ok {
			r[bucket] = v
		}
	}
	return nil
}

// =============================================================================
// BUCKET SET - Hours and earnings accumulated per bucket
// =============================================================================

// HoursEarnings pairs a quantity of time with its pay.
type HoursEarnings struct {
	Hours    decimal.Decimal `json:"hours"`
	Earnings decimal.Decimal `json:"earnings"`
}

func (he HoursEarnings) Add(o HoursEarnings) HoursEarnings {
	return HoursEarnings{Hours: he.Hours.Add(o.Hours), Earnings: he.Earnings.Add(o.Earnings)}
}

func (he HoursEarnings) IsZero() bool { return he.Hours.IsZero() && he.Earnings.IsZero() }

// BucketSet accumulates hours and earnings for each of the seven buckets.
type BucketSet [numBuckets]HoursEarnings

// Get returns the entry of one bucket.
func (s BucketSet) Get(b Bucket) HoursEarnings {
	if b < 0 || b >= numBuckets {
		return HoursEarnings{}
	}
	return s[b]
}

// Add returns the bucket-wise sum of two sets.
func (s BucketSet) Add(o BucketSet) BucketSet {
	for i := range s {
		s[i] = s[i].Add(o[i])
	}
	return s
}

// Hours is the total of all buckets' hours.
func (s BucketSet) Hours() decimal.Decimal {
	total := decimal.Zero
	for _, he := range s {
		total = total.Add(he.Hours)
	}
	return total
}

// Earnings is the total of all buckets' earnings.
func (s BucketSet) Earnings() decimal.Decimal {
	total := decimal.Zero
	for _, he := range s {
		total = total.Add(he.Earnings)
	}
	return total
}

// price adds the segments of one span, each priced at base × multiplier.
func (s BucketSet) price(segments []Segment, base decimal.Decimal, rates BucketRates) BucketSet {
	for _, seg := range segments {
		if seg.Minutes <= 0 {
			continue
		}
		s[seg.Bucket] = s[seg.Bucket].Add(HoursEarnings{
			Hours:    hoursFromMinutes(seg.Minutes),
			Earnings: payForMinutes(seg.Minutes, base.Mul(rates.Multiplier(seg.Bucket))),
		})
	}
	return s
}

// MarshalJSON emits only the buckets that carry something, keyed by name.
func (s BucketSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]HoursEarnings)
	for i, he := range s {
		if !he.IsZero() {
			m[bucketNames[i]] = he
		}
	}
	return json.Marshal(m)
}

func (s *BucketSet) UnmarshalJSON(b []byte) error {
	var m map[string]HoursEarnings
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for name, he := range m {
		if bucket, ok := ParseBucket(name); ok {
			s[bucket] = he
		}
	}
	return nil
}

// sortedSpans resolves intervals and orders them chronologically.
func sortedSpans(ivs []Interval) []Span {
	spans := make([]Span, 0, len(ivs))
	for _, iv := range ivs {
		if span, ok := iv.Span(); ok {
			spans = append(spans, span)
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].From < spans[j].From })
	return spans
}

// payForMinutes prices minutes at an hourly rate, dividing last to keep
// whole-hour results exact.
func payForMinutes(minutes int, hourly decimal.Decimal) decimal.Decimal {
	if minutes <= 0 || !hourly.IsPositive() {
		return decimal.Zero
	}
	return hourly.Mul(decimal.NewFromInt(int64(minutes))).Div(sixty)
}
