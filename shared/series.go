package shared

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Series represents a date-indexed numeric series for a market. Values align
// one-to-one with dates and are not mutated after generation.
type Series struct {
	Market string
	Dates  []time.Time
	Values []float64
}

// Validate asserts the series upholds its alignment and ordering invariants.
func (s *Series) Validate() error {
	var errs error

	if len(s.Dates) != len(s.Values) {
		errs = errors.Join(errs, fmt.Errorf("series has %d dates but %d values",
			len(s.Dates), len(s.Values)))
	}

	for idx := 1; idx < len(s.Dates); idx++ {
		if !s.Dates[idx].After(s.Dates[idx-1]) {
			errs = errors.Join(errs, fmt.Errorf("series dates not strictly increasing at index %d", idx))
			break
		}
	}

	return errs
}

// Mean returns the arithmetic mean of the series values.
func (s *Series) Mean() float64 {
	return mean(s.Values)
}

// StdDev returns the sample standard deviation of the series values.
func (s *Series) StdDev() float64 {
	return stdDev(s.Values)
}

// Autocorrelation returns the autocorrelation of the series values at the
// provided lag.
func (s *Series) Autocorrelation(lag int) (float64, error) {
	return autocorrelation(s.Values, lag)
}

// VolumeSeries represents a date-indexed daily trading volume series for a
// market. Volumes are non-negative integers.
type VolumeSeries struct {
	Market  string
	Dates   []time.Time
	Volumes []int64
}

// Validate asserts the volume series upholds its alignment, ordering and
// non-negativity invariants.
func (v *VolumeSeries) Validate() error {
	var errs error

	if len(v.Dates) != len(v.Volumes) {
		errs = errors.Join(errs, fmt.Errorf("volume series has %d dates but %d volumes",
			len(v.Dates), len(v.Volumes)))
	}

	for idx := 1; idx < len(v.Dates); idx++ {
		if !v.Dates[idx].After(v.Dates[idx-1]) {
			errs = errors.Join(errs, fmt.Errorf("volume series dates not strictly increasing at index %d", idx))
			break
		}
	}

	for idx := range v.Volumes {
		if v.Volumes[idx] < 0 {
			errs = errors.Join(errs, fmt.Errorf("negative volume %d at index %d", v.Volumes[idx], idx))
			break
		}
	}

	return errs
}

// Autocorrelation returns the autocorrelation of the volume series at the
// provided lag.
func (v *VolumeSeries) Autocorrelation(lag int) (float64, error) {
	values := make([]float64, len(v.Volumes))
	for idx := range v.Volumes {
		values[idx] = float64(v.Volumes[idx])
	}

	return autocorrelation(values, lag)
}

// mean returns the arithmetic mean of the provided values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for idx := range values {
		sum += values[idx]
	}

	return sum / float64(len(values))
}

// stdDev returns the sample standard deviation of the provided values.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	avg := mean(values)

	var sum float64
	for idx := range values {
		diff := values[idx] - avg
		sum += diff * diff
	}

	return math.Sqrt(sum / float64(len(values)-1))
}

// autocorrelation returns the autocorrelation of the provided values at the
// provided lag.
func autocorrelation(values []float64, lag int) (float64, error) {
	if lag < 1 {
		return 0, fmt.Errorf("autocorrelation lag must be positive, got %d", lag)
	}
	if len(values) <= lag+1 {
		return 0, fmt.Errorf("%d values insufficient for autocorrelation at lag %d",
			len(values), lag)
	}

	avg := mean(values)

	var numerator, denominator float64
	for idx := range values {
		diff := values[idx] - avg
		denominator += diff * diff
	}

	if denominator == 0 {
		return 0, nil
	}

	for idx := lag; idx < len(values); idx++ {
		numerator += (values[idx] - avg) * (values[idx-lag] - avg)
	}

	return numerator / denominator, nil
}
