package simulate

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/dnldd/synth/shared"
)

const (
	// TradingDaysPerYear is the business-day count used to size the time
	// step for daily price paths.
	TradingDaysPerYear = 252
)

// GBMConfig represents the geometric brownian motion price path generator
// configuration.
type GBMConfig struct {
	// Market is the market the generated prices are attributed to.
	Market string
	// InitialPrice is the price the path starts from.
	InitialPrice float64
	// Drift is the annualized drift of the process.
	Drift float64
	// Volatility is the annualized volatility of the process.
	Volatility float64
	// Horizon is the simulated time horizon in years.
	Horizon float64
	// Steps is the number of steps the horizon is divided into.
	Steps int
	// Seed seeds the generator's random source.
	Seed int64
}

// Validate asserts the config sane inputs.
func (cfg *GBMConfig) Validate() error {
	var errs error

	if cfg.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("market cannot be an empty string"))
	}
	if cfg.InitialPrice <= 0 {
		errs = errors.Join(errs, fmt.Errorf("initial price must be positive, got %v", cfg.InitialPrice))
	}
	if cfg.Volatility < 0 {
		errs = errors.Join(errs, fmt.Errorf("volatility cannot be negative, got %v", cfg.Volatility))
	}
	if cfg.Horizon <= 0 {
		errs = errors.Join(errs, fmt.Errorf("horizon must be positive, got %v", cfg.Horizon))
	}
	if cfg.Steps <= 0 {
		errs = errors.Join(errs, fmt.Errorf("step count must be positive, got %d", cfg.Steps))
	}

	return errs
}

// PathGenerator generates simulated price paths via geometric brownian
// motion. Each step multiplies the previous price by the exponential of a
// normally distributed increment parametrized by drift and volatility scaled
// by the time step.
type PathGenerator struct {
	cfg *GBMConfig
}

// NewPathGenerator initializes a new price path generator.
func NewPathGenerator(cfg *GBMConfig) (*PathGenerator, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating gbm config: %w", err)
	}

	return &PathGenerator{
		cfg: cfg,
	}, nil
}

// step advances the provided price by one gbm increment.
func (g *PathGenerator) step(price float64, dt float64, rnd *rand.Rand) float64 {
	drift := (g.cfg.Drift - 0.5*g.cfg.Volatility*g.cfg.Volatility) * dt
	diffusion := g.cfg.Volatility * math.Sqrt(dt) * rnd.NormFloat64()
	return price * math.Exp(drift+diffusion)
}

// GeneratePath produces a single simulated price path of length Steps+1,
// starting at the configured initial price.
func (g *PathGenerator) GeneratePath() []float64 {
	rnd := rand.New(rand.NewSource(g.cfg.Seed))
	return g.generatePath(rnd)
}

// generatePath produces a single path drawing from the provided random source.
func (g *PathGenerator) generatePath(rnd *rand.Rand) []float64 {
	dt := g.cfg.Horizon / float64(g.cfg.Steps)

	path := make([]float64, g.cfg.Steps+1)
	path[0] = g.cfg.InitialPrice
	for idx := 1; idx < len(path); idx++ {
		path[idx] = g.step(path[idx-1], dt, rnd)
	}

	return path
}

// GenerateEnsemble produces the requested number of independent price paths.
// Paths draw from a single seeded source, so a fixed seed reproduces the
// whole ensemble.
func (g *PathGenerator) GenerateEnsemble(paths int) ([][]float64, error) {
	if paths <= 0 {
		return nil, fmt.Errorf("path count must be positive, got %d", paths)
	}

	rnd := rand.New(rand.NewSource(g.cfg.Seed))

	ensemble := make([][]float64, paths)
	for idx := range ensemble {
		ensemble[idx] = g.generatePath(rnd)
	}

	return ensemble, nil
}

// GenerateDaily produces a simulated daily price series aligned to the
// business-day calendar between the provided start and end dates, using a
// fixed dt of one trading day. The configured horizon and step count are
// ignored, the date range determines the path length.
func (g *PathGenerator) GenerateDaily(start time.Time, end time.Time) (*shared.Series, error) {
	days, err := shared.BusinessDays(start, end)
	if err != nil {
		return nil, fmt.Errorf("generating business days: %w", err)
	}

	rnd := rand.New(rand.NewSource(g.cfg.Seed))
	dt := 1 / float64(TradingDaysPerYear)

	values := make([]float64, len(days))
	price := g.cfg.InitialPrice
	for idx := range days {
		values[idx] = price
		price = g.step(price, dt, rnd)
	}

	series := &shared.Series{
		Market: g.cfg.Market,
		Dates:  days,
		Values: values,
	}

	err = series.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating price series: %w", err)
	}

	return series, nil
}
