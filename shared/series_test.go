package shared

import (
	"math"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestSeriesValidate(t *testing.T) {
	tests := []struct {
		name    string
		series  Series
		wantErr bool
	}{
		{
			name: "valid series",
			series: Series{
				Market: "^GSPC",
				Dates:  []time.Time{date(1970, time.January, 1), date(1970, time.January, 2)},
				Values: []float64{100, 101.5},
			},
			wantErr: false,
		},
		{
			name: "misaligned series",
			series: Series{
				Market: "^GSPC",
				Dates:  []time.Time{date(1970, time.January, 1)},
				Values: []float64{100, 101.5},
			},
			wantErr: true,
		},
		{
			name: "dates not strictly increasing",
			series: Series{
				Market: "^GSPC",
				Dates:  []time.Time{date(1970, time.January, 2), date(1970, time.January, 1)},
				Values: []float64{100, 101.5},
			},
			wantErr: true,
		},
		{
			name: "duplicate dates",
			series: Series{
				Market: "^GSPC",
				Dates:  []time.Time{date(1970, time.January, 1), date(1970, time.January, 1)},
				Values: []float64{100, 101.5},
			},
			wantErr: true,
		},
		{
			name:    "empty series",
			series:  Series{Market: "^GSPC"},
			wantErr: false,
		},
	}

	for _, test := range tests {
		err := test.series.Validate()
		if test.wantErr && err == nil {
			t.Errorf("%s: expected an error, got none", test.name)
		}
		if !test.wantErr && err != nil {
			t.Errorf("%s: expected no error, got %v", test.name, err)
		}
	}
}

func TestVolumeSeriesValidate(t *testing.T) {
	tests := []struct {
		name    string
		series  VolumeSeries
		wantErr bool
	}{
		{
			name: "valid volume series",
			series: VolumeSeries{
				Market:  "^GSPC",
				Dates:   []time.Time{date(1970, time.January, 1), date(1970, time.January, 2)},
				Volumes: []int64{498093, 12365772},
			},
			wantErr: false,
		},
		{
			name: "negative volume",
			series: VolumeSeries{
				Market:  "^GSPC",
				Dates:   []time.Time{date(1970, time.January, 1), date(1970, time.January, 2)},
				Volumes: []int64{498093, -1},
			},
			wantErr: true,
		},
		{
			name: "misaligned volume series",
			series: VolumeSeries{
				Market:  "^GSPC",
				Dates:   []time.Time{date(1970, time.January, 1)},
				Volumes: []int64{498093, 12365772},
			},
			wantErr: true,
		},
	}

	for _, test := range tests {
		err := test.series.Validate()
		if test.wantErr && err == nil {
			t.Errorf("%s: expected an error, got none", test.name)
		}
		if !test.wantErr && err != nil {
			t.Errorf("%s: expected no error, got %v", test.name, err)
		}
	}
}

func TestSeriesStats(t *testing.T) {
	series := Series{
		Market: "^GSPC",
		Dates: []time.Time{
			date(1970, time.January, 1),
			date(1970, time.January, 2),
			date(1970, time.January, 5),
			date(1970, time.January, 6),
		},
		Values: []float64{2, 4, 4, 6},
	}

	assert.Equal(t, series.Mean(), float64(4))

	// Sample standard deviation of {2, 4, 4, 6} with mean 4 is sqrt(8/3).
	want := math.Sqrt(8.0 / 3.0)
	if math.Abs(series.StdDev()-want) > 1e-12 {
		t.Errorf("expected std dev %v, got %v", want, series.StdDev())
	}
}

func TestAutocorrelation(t *testing.T) {
	// A strictly alternating series is strongly negatively autocorrelated at
	// lag 1.
	alternating := Series{
		Values: []float64{1, -1, 1, -1, 1, -1, 1, -1, 1, -1},
	}
	for idx := range alternating.Values {
		alternating.Dates = append(alternating.Dates, date(1970, time.January, 1).AddDate(0, 0, idx))
	}

	r, err := alternating.Autocorrelation(1)
	assert.NoError(t, err)
	if r > -0.8 {
		t.Errorf("expected strong negative lag-1 autocorrelation, got %v", r)
	}

	// A constant series has zero autocorrelation by convention.
	constant := Series{
		Dates:  alternating.Dates,
		Values: []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
	}
	r, err = constant.Autocorrelation(1)
	assert.NoError(t, err)
	assert.Equal(t, r, float64(0))
}

func TestAutocorrelationErrors(t *testing.T) {
	series := Series{Values: []float64{1, 2, 3}}

	// Ensure invalid lags are rejected.
	_, err := series.Autocorrelation(0)
	assert.Error(t, err)

	// Ensure short series are rejected.
	_, err = series.Autocorrelation(5)
	assert.Error(t, err)
}
