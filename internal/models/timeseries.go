package models

import (
	"fmt"
	"math"
	"time"
)

// SeriesKind tags a TimeSeries with the unit its values are expressed in.
// The forecast engine derives its differencing order from the kind, and the
// presentation layer uses it to decide whether a series still needs to be
// exponentiated back to price units.
type SeriesKind string

const (
	// KindPrice marks values as positive prices (adjusted close).
	KindPrice SeriesKind = "price"
	// KindLogPrice marks values as natural logs of prices.
	KindLogPrice SeriesKind = "log_price"
	// KindReturn marks values as percentage log-returns.
	KindReturn SeriesKind = "return"
)

// DifferencingOrder returns the integration order used when a series of this
// kind is fed to the forecast engine. Level series (prices, log-prices) are
// treated as integrated of order 1; return series are already stationary.
func (k SeriesKind) DifferencingOrder() int {
	if k == KindReturn {
		return 0
	}
	return 1
}

// TimeSeries is an ordered sequence of (date, value) observations on a
// business-day calendar. Dates are strictly increasing and hold no time
// component (midnight UTC). Stages of the pipeline consume one TimeSeries
// and produce a new one; none mutate their input.
type TimeSeries struct {
	Kind   SeriesKind  `json:"kind"`
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// NewTimeSeries builds a TimeSeries and validates its invariants: matching
// lengths and strictly increasing dates.
func NewTimeSeries(kind SeriesKind, dates []time.Time, values []float64) (TimeSeries, error) {
	if len(dates) != len(values) {
		return TimeSeries{}, fmt.Errorf("timeseries: %d dates but %d values", len(dates), len(values))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return TimeSeries{}, fmt.Errorf("timeseries: dates not strictly increasing at index %d", i)
		}
	}
	return TimeSeries{Kind: kind, Dates: dates, Values: values}, nil
}

// Len returns the number of observations.
func (s TimeSeries) Len() int {
	return len(s.Values)
}

// Last returns the final observation. It must not be called on an empty
// series.
func (s TimeSeries) Last() (time.Time, float64) {
	n := len(s.Values)
	return s.Dates[n-1], s.Values[n-1]
}

// Copy returns a deep copy of the series.
func (s TimeSeries) Copy() TimeSeries {
	dates := make([]time.Time, len(s.Dates))
	copy(dates, s.Dates)
	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	return TimeSeries{Kind: s.Kind, Dates: dates, Values: values}
}

// Tail returns the last n observations, or the whole series if it is shorter.
func (s TimeSeries) Tail(n int) TimeSeries {
	if n >= len(s.Values) {
		return s.Copy()
	}
	start := len(s.Values) - n
	dates := make([]time.Time, n)
	copy(dates, s.Dates[start:])
	values := make([]float64, n)
	copy(values, s.Values[start:])
	return TimeSeries{Kind: s.Kind, Dates: dates, Values: values}
}

// Log converts a price series to a log-price series. A non-positive price has
// no logarithm and surfaces as a NumericFault.
func (s TimeSeries) Log() (TimeSeries, error) {
	if s.Kind != KindPrice {
		return TimeSeries{}, fmt.Errorf("timeseries: cannot take log of %s series", s.Kind)
	}
	out := s.Copy()
	out.Kind = KindLogPrice
	for i, v := range s.Values {
		if v <= 0 {
			return TimeSeries{}, fmt.Errorf("non-positive price %.4f at %s: %w", v, s.Dates[i].Format(DateLayout), ErrNumericFault)
		}
		out.Values[i] = math.Log(v)
	}
	return out, nil
}

// Exp converts a log-price series back to price units. The conversion is
// applied to every observation so historical and forecast segments stay in
// the same unit.
func (s TimeSeries) Exp() (TimeSeries, error) {
	if s.Kind != KindLogPrice {
		return TimeSeries{}, fmt.Errorf("timeseries: cannot exponentiate %s series", s.Kind)
	}
	out := s.Copy()
	out.Kind = KindPrice
	for i, v := range s.Values {
		out.Values[i] = math.Exp(v)
	}
	return out, nil
}

// DateLayout is the canonical date format used across the API.
const DateLayout = "2006-01-02"

// Day truncates t to a calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay reports whether t falls on Monday through Friday. There is no
// holiday calendar.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextBusinessDay returns the first business day strictly after t.
func NextBusinessDay(t time.Time) time.Time {
	d := Day(t).AddDate(0, 0, 1)
	for !IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// BusinessDays returns every business day from `from` to `to` inclusive, in
// ascending order. Returns nil when `to` precedes `from`.
func BusinessDays(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}
