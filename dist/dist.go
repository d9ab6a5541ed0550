package dist

import (
	"fmt"
	"math"
	"math/rand"
)

// Rander are objects that can produce random numbers.
type Rander interface {
	Rand() float64
}

// Constant generates a constant number. It is mostly useful in tests as a
// stand-in for a real distribution.
type Constant struct {
	Number float64
}

// Rand implements Rander.
func (c *Constant) Rand() float64 {
	return c.Number
}

// Normal generates random numbers that are normally distributed.
type Normal struct {
	Mu    float64
	Sigma float64

	rnd *rand.Rand
}

// NewNormal initializes a normal distribution sampler drawing from the
// provided random source.
func NewNormal(mu float64, sigma float64, rnd *rand.Rand) (*Normal, error) {
	if sigma < 0 {
		return nil, fmt.Errorf("normal sigma cannot be negative, got %v", sigma)
	}

	return &Normal{
		Mu:    mu,
		Sigma: sigma,
		rnd:   rnd,
	}, nil
}

// Rand implements Rander.
func (n *Normal) Rand() float64 {
	return n.rnd.NormFloat64()*n.Sigma + n.Mu
}

// LogNormal generates random numbers that are log-normally distributed.
// https://en.wikipedia.org/wiki/Log-normal_distribution
type LogNormal struct {
	Mu    float64
	Sigma float64

	rnd *rand.Rand
}

// NewLogNormal initializes a lognormal distribution sampler drawing from the
// provided random source.
func NewLogNormal(mu float64, sigma float64, rnd *rand.Rand) (*LogNormal, error) {
	if sigma < 0 {
		return nil, fmt.Errorf("lognormal sigma cannot be negative, got %v", sigma)
	}

	return &LogNormal{
		Mu:    mu,
		Sigma: sigma,
		rnd:   rnd,
	}, nil
}

// Rand implements Rander.
func (l *LogNormal) Rand() float64 {
	r := l.rnd.NormFloat64()
	return math.Exp(r*l.Sigma + l.Mu)
}

// Pareto generates random numbers that are Pareto distributed, in the
// zero-based (Lomax) form with support on [0, +inf).
// https://en.wikipedia.org/wiki/Pareto_distribution
type Pareto struct {
	Shape float64

	rnd *rand.Rand
}

// NewPareto initializes a pareto distribution sampler drawing from the
// provided random source.
func NewPareto(shape float64, rnd *rand.Rand) (*Pareto, error) {
	if shape <= 0 {
		return nil, fmt.Errorf("pareto shape must be positive, got %v", shape)
	}

	return &Pareto{
		Shape: shape,
		rnd:   rnd,
	}, nil
}

// Rand implements Rander.
func (p *Pareto) Rand() float64 {
	// Inverse transform sampling, u is in (0, 1].
	u := 1 - p.rnd.Float64()
	return math.Pow(u, -1/p.Shape) - 1
}
