package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTimeSeries_Validation(t *testing.T) {
	_, err := NewTimeSeries(KindPrice, []time.Time{date(2024, 1, 2)}, []float64{1, 2})
	assert.Error(t, err)

	_, err = NewTimeSeries(KindPrice,
		[]time.Time{date(2024, 1, 3), date(2024, 1, 2)},
		[]float64{1, 2})
	assert.Error(t, err)

	s, err := NewTimeSeries(KindPrice,
		[]time.Time{date(2024, 1, 2), date(2024, 1, 3)},
		[]float64{100, 101})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestBusinessDays_SkipsWeekends(t *testing.T) {
	// 2024-01-05 is a Friday, 2024-01-08 the following Monday.
	days := BusinessDays(date(2024, 1, 4), date(2024, 1, 9))
	require.Len(t, days, 4)
	assert.Equal(t, date(2024, 1, 4), days[0])
	assert.Equal(t, date(2024, 1, 5), days[1])
	assert.Equal(t, date(2024, 1, 8), days[2])
	assert.Equal(t, date(2024, 1, 9), days[3])
}

func TestNextBusinessDay(t *testing.T) {
	assert.Equal(t, date(2024, 1, 8), NextBusinessDay(date(2024, 1, 5)))  // Fri -> Mon
	assert.Equal(t, date(2024, 1, 8), NextBusinessDay(date(2024, 1, 6)))  // Sat -> Mon
	assert.Equal(t, date(2024, 1, 10), NextBusinessDay(date(2024, 1, 9))) // Tue -> Wed
}

func TestSeriesKind_DifferencingOrder(t *testing.T) {
	assert.Equal(t, 1, KindPrice.DifferencingOrder())
	assert.Equal(t, 1, KindLogPrice.DifferencingOrder())
	assert.Equal(t, 0, KindReturn.DifferencingOrder())
}

func TestLogExp_RoundTrip(t *testing.T) {
	s, err := NewTimeSeries(KindPrice,
		[]time.Time{date(2024, 1, 2), date(2024, 1, 3), date(2024, 1, 4)},
		[]float64{100, 102.5, 99.1})
	require.NoError(t, err)

	logged, err := s.Log()
	require.NoError(t, err)
	assert.Equal(t, KindLogPrice, logged.Kind)

	back, err := logged.Exp()
	require.NoError(t, err)
	assert.Equal(t, KindPrice, back.Kind)
	for i := range s.Values {
		assert.InDelta(t, s.Values[i], back.Values[i], 1e-9)
	}
	// original untouched
	assert.Equal(t, 100.0, s.Values[0])
}

func TestLog_NonPositivePrice(t *testing.T) {
	s, err := NewTimeSeries(KindPrice,
		[]time.Time{date(2024, 1, 2), date(2024, 1, 3)},
		[]float64{100, 0})
	require.NoError(t, err)

	_, err = s.Log()
	assert.ErrorIs(t, err, ErrNumericFault)
}

func TestTail(t *testing.T) {
	s, err := NewTimeSeries(KindReturn,
		[]time.Time{date(2024, 1, 2), date(2024, 1, 3), date(2024, 1, 4)},
		[]float64{1, 2, 3})
	require.NoError(t, err)

	tail := s.Tail(2)
	require.Equal(t, 2, tail.Len())
	assert.Equal(t, []float64{2, 3}, tail.Values)

	whole := s.Tail(10)
	assert.Equal(t, 3, whole.Len())
}

func TestParseModelSpec(t *testing.T) {
	for in, want := range map[string]ModelSpec{
		"":     ModelNone,
		"none": ModelNone,
		"ar":   ModelAR,
		"AR":   ModelAR,
		"ma":   ModelMA,
		"ARMA": ModelARMA,
	} {
		got, err := ParseModelSpec(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseModelSpec("GARCH")
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestModelSpec_Orders(t *testing.T) {
	p, q := ModelAR.Orders()
	assert.Equal(t, [2]int{2, 0}, [2]int{p, q})
	p, q = ModelMA.Orders()
	assert.Equal(t, [2]int{0, 2}, [2]int{p, q})
	p, q = ModelARMA.Orders()
	assert.Equal(t, [2]int{2, 2}, [2]int{p, q})
	p, q = ModelNone.Orders()
	assert.Equal(t, [2]int{0, 0}, [2]int{p, q})
}

func TestExp_WrongKind(t *testing.T) {
	s, _ := NewTimeSeries(KindPrice, []time.Time{date(2024, 1, 2)}, []float64{math.Pi})
	_, err := s.Exp()
	assert.Error(t, err)
}
