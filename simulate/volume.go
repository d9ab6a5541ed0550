package simulate

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dnldd/synth/dist"
	"github.com/dnldd/synth/shared"
)

const (
	// VolumeScale is the scale constant applied to raw pareto samples to
	// bring them into a realistic daily volume range.
	VolumeScale = 1_000_000
)

// VolumeConfig represents the daily volume generator configuration.
type VolumeConfig struct {
	// Market is the market the generated volumes are attributed to.
	Market string
	// Start is the first date of the simulated range.
	Start time.Time
	// End is the last date of the simulated range.
	End time.Time
	// Shape is the pareto shape parameter for the volume draws.
	Shape float64
	// Seed seeds the generator's random source.
	Seed int64
}

// Validate asserts the config sane inputs.
func (cfg *VolumeConfig) Validate() error {
	var errs error

	if cfg.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("market cannot be an empty string"))
	}
	if cfg.Shape <= 0 {
		errs = errors.Join(errs, fmt.Errorf("pareto shape must be positive, got %v", cfg.Shape))
	}
	if cfg.End.Before(cfg.Start) {
		errs = errors.Join(errs, fmt.Errorf("end date %s cannot precede start date %s",
			cfg.End.Format(shared.DateLayout), cfg.Start.Format(shared.DateLayout)))
	}

	return errs
}

// VolumeGenerator generates simulated daily trading volumes by drawing
// independently from a scaled pareto distribution, one draw per business day.
type VolumeGenerator struct {
	cfg *VolumeConfig
}

// NewVolumeGenerator initializes a new daily volume generator.
func NewVolumeGenerator(cfg *VolumeConfig) (*VolumeGenerator, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating volume config: %w", err)
	}

	return &VolumeGenerator{
		cfg: cfg,
	}, nil
}

// Generate produces the simulated volume series for the configured range.
// Draws are independent and identically distributed, with no correlation
// between successive days. Scaled samples truncate toward zero.
func (g *VolumeGenerator) Generate() (*shared.VolumeSeries, error) {
	days, err := shared.BusinessDays(g.cfg.Start, g.cfg.End)
	if err != nil {
		return nil, fmt.Errorf("generating business days: %w", err)
	}

	rnd := rand.New(rand.NewSource(g.cfg.Seed))
	pareto, err := dist.NewPareto(g.cfg.Shape, rnd)
	if err != nil {
		return nil, fmt.Errorf("creating pareto sampler: %w", err)
	}

	volumes := make([]int64, len(days))
	for idx := range days {
		volumes[idx] = int64(pareto.Rand() * VolumeScale)
	}

	series := &shared.VolumeSeries{
		Market:  g.cfg.Market,
		Dates:   days,
		Volumes: volumes,
	}

	err = series.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating volume series: %w", err)
	}

	return series, nil
}
