package simulate

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dnldd/synth/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestGBMConfigValidate(t *testing.T) {
	baseCfg := GBMConfig{
		Market:       "^GSPC",
		InitialPrice: 100,
		Drift:        0.05,
		Volatility:   0.2,
		Horizon:      1,
		Steps:        TradingDaysPerYear,
		Seed:         42,
	}

	tests := []struct {
		name        string
		modify      func(cfg *GBMConfig)
		wantErr     bool
		errContains []string
	}{
		{
			name:    "valid config returns nil",
			modify:  func(cfg *GBMConfig) {},
			wantErr: false,
		},
		{
			name:        "missing market",
			modify:      func(cfg *GBMConfig) { cfg.Market = "" },
			wantErr:     true,
			errContains: []string{"market cannot be an empty string"},
		},
		{
			name:        "zero initial price",
			modify:      func(cfg *GBMConfig) { cfg.InitialPrice = 0 },
			wantErr:     true,
			errContains: []string{"initial price must be positive"},
		},
		{
			name:        "negative volatility",
			modify:      func(cfg *GBMConfig) { cfg.Volatility = -0.2 },
			wantErr:     true,
			errContains: []string{"volatility cannot be negative"},
		},
		{
			name:        "zero horizon",
			modify:      func(cfg *GBMConfig) { cfg.Horizon = 0 },
			wantErr:     true,
			errContains: []string{"horizon must be positive"},
		},
		{
			name:        "zero steps",
			modify:      func(cfg *GBMConfig) { cfg.Steps = 0 },
			wantErr:     true,
			errContains: []string{"step count must be positive"},
		},
		{
			name: "multiple invalid fields",
			modify: func(cfg *GBMConfig) {
				cfg.InitialPrice = -5
				cfg.Steps = -1
			},
			wantErr: true,
			errContains: []string{
				"initial price must be positive",
				"step count must be positive",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseCfg
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				for _, substr := range tt.errContains {
					assert.True(t, strings.Contains(err.Error(), substr))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGeneratePath(t *testing.T) {
	cfg := GBMConfig{
		Market:       "^GSPC",
		InitialPrice: 100,
		Drift:        0.05,
		Volatility:   0.2,
		Horizon:      1,
		Steps:        TradingDaysPerYear,
		Seed:         42,
	}

	generator, err := NewPathGenerator(&cfg)
	assert.NoError(t, err)

	path := generator.GeneratePath()

	// The path includes the initial price, so it has steps+1 entries.
	assert.Equal(t, len(path), cfg.Steps+1)
	assert.Equal(t, path[0], cfg.InitialPrice)

	// A multiplicative path from a positive initial price stays positive.
	for idx := range path {
		if path[idx] <= 0 {
			t.Fatalf("expected positive price at step %d, got %v", idx, path[idx])
		}
	}

	// Ensure a fixed seed reproduces the path exactly.
	replay, err := NewPathGenerator(&cfg)
	assert.NoError(t, err)
	if diff := cmp.Diff(path, replay.GeneratePath()); diff != "" {
		t.Errorf("fixed-seed path mismatch (-first +second):\n%s", diff)
	}
}

func TestGeneratePathZeroVolatility(t *testing.T) {
	cfg := GBMConfig{
		Market:       "^GSPC",
		InitialPrice: 100,
		Drift:        0.05,
		Volatility:   0,
		Horizon:      1,
		Steps:        100,
		Seed:         42,
	}

	generator, err := NewPathGenerator(&cfg)
	assert.NoError(t, err)

	// With zero volatility the recurrence collapses to pure exponential
	// drift: the final price is the closed form initial * exp(drift * horizon).
	path := generator.GeneratePath()
	want := cfg.InitialPrice * math.Exp(cfg.Drift*cfg.Horizon)
	if math.Abs(path[len(path)-1]-want) > 1e-9 {
		t.Errorf("expected final price %v, got %v", want, path[len(path)-1])
	}
}

func TestGenerateEnsemble(t *testing.T) {
	cfg := GBMConfig{
		Market:       "^GSPC",
		InitialPrice: 100,
		Drift:        0.05,
		Volatility:   0.2,
		Horizon:      1,
		Steps:        50,
		Seed:         42,
	}

	generator, err := NewPathGenerator(&cfg)
	assert.NoError(t, err)

	ensemble, err := generator.GenerateEnsemble(10)
	assert.NoError(t, err)
	assert.Equal(t, len(ensemble), 10)

	for idx := range ensemble {
		assert.Equal(t, len(ensemble[idx]), cfg.Steps+1)
		assert.Equal(t, ensemble[idx][0], cfg.InitialPrice)
	}

	// Paths within an ensemble draw different increments.
	if diff := cmp.Diff(ensemble[0], ensemble[1]); diff == "" {
		t.Error("expected distinct paths within an ensemble")
	}

	// The whole ensemble reproduces under a fixed seed.
	replay, err := NewPathGenerator(&cfg)
	assert.NoError(t, err)
	replayed, err := replay.GenerateEnsemble(10)
	assert.NoError(t, err)
	if diff := cmp.Diff(ensemble, replayed); diff != "" {
		t.Errorf("fixed-seed ensemble mismatch (-first +second):\n%s", diff)
	}

	// Ensure a non-positive path count is rejected.
	_, err = generator.GenerateEnsemble(0)
	assert.Error(t, err)
}

func TestGenerateDaily(t *testing.T) {
	cfg := GBMConfig{
		Market:       "^GSPC",
		InitialPrice: 100,
		Drift:        0.05,
		Volatility:   0.2,
		Horizon:      1,
		Steps:        TradingDaysPerYear,
		Seed:         42,
	}

	generator, err := NewPathGenerator(&cfg)
	assert.NoError(t, err)

	start := date(1970, time.January, 1)
	end := date(1970, time.March, 31)

	series, err := generator.GenerateDaily(start, end)
	assert.NoError(t, err)
	assert.NoError(t, series.Validate())

	// Ensure the series spans exactly the business days of the range and
	// starts at the initial price.
	wantLen, err := shared.CountBusinessDays(start, end)
	assert.NoError(t, err)
	assert.Equal(t, len(series.Values), wantLen)
	assert.Equal(t, series.Values[0], cfg.InitialPrice)
	assert.Equal(t, series.Market, "^GSPC")

	for idx := range series.Values {
		if series.Values[idx] <= 0 {
			t.Fatalf("expected positive price at index %d, got %v", idx, series.Values[idx])
		}
	}

	// Ensure an invalid date range is rejected.
	_, err = generator.GenerateDaily(end, start)
	assert.Error(t, err)
}
