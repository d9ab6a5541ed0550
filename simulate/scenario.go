package simulate

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dnldd/synth/shared"
	"github.com/tidwall/gjson"
)

// Kind represents the type of generator a scenario runs.
type Kind int

const (
	Volume Kind = iota
	Price
	UnknownKind
)

// String stringifies the provided scenario kind.
func (k *Kind) String() string {
	switch *k {
	case Volume:
		return "volume"
	case Price:
		return "price"
	default:
		return "unknown"
	}
}

// ParseKind parses the scenario kind from the provided string.
func ParseKind(kind string) (Kind, error) {
	switch kind {
	case "volume":
		return Volume, nil
	case "price":
		return Price, nil
	default:
		return UnknownKind, fmt.Errorf("unknown scenario kind: %q", kind)
	}
}

// Scenario describes one simulation to run: the generator kind and its
// parameters.
type Scenario struct {
	Name   string
	Kind   Kind
	Market string
	Start  time.Time
	End    time.Time
	Seed   int64

	// Volume scenario parameters.
	Shape float64

	// Price scenario parameters.
	InitialPrice float64
	Drift        float64
	Volatility   float64
}

// Validate asserts the scenario has sane inputs for its kind.
func (s *Scenario) Validate() error {
	var errs error

	if s.Name == "" {
		errs = errors.Join(errs, fmt.Errorf("scenario name cannot be an empty string"))
	}
	if s.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("scenario market cannot be an empty string"))
	}
	if s.End.Before(s.Start) {
		errs = errors.Join(errs, fmt.Errorf("scenario end date %s cannot precede start date %s",
			s.End.Format(shared.DateLayout), s.Start.Format(shared.DateLayout)))
	}

	switch s.Kind {
	case Volume:
		if s.Shape <= 0 {
			errs = errors.Join(errs, fmt.Errorf("scenario pareto shape must be positive, got %v", s.Shape))
		}
	case Price:
		if s.InitialPrice <= 0 {
			errs = errors.Join(errs, fmt.Errorf("scenario initial price must be positive, got %v", s.InitialPrice))
		}
		if s.Volatility < 0 {
			errs = errors.Join(errs, fmt.Errorf("scenario volatility cannot be negative, got %v", s.Volatility))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("unknown scenario kind: %d", s.Kind))
	}

	return errs
}

// ParseScenarios parses scenario definitions from the provided json data.
func ParseScenarios(data []gjson.Result) ([]Scenario, error) {
	scenarios := make([]Scenario, 0, len(data))
	for idx := range data {
		entry := data[idx]

		kind, err := ParseKind(entry.Get("kind").String())
		if err != nil {
			return nil, fmt.Errorf("parsing scenario kind: %w", err)
		}

		start, err := time.Parse(shared.DateLayout, entry.Get("start").String())
		if err != nil {
			return nil, fmt.Errorf("parsing scenario start date: %v", err)
		}

		end, err := time.Parse(shared.DateLayout, entry.Get("end").String())
		if err != nil {
			return nil, fmt.Errorf("parsing scenario end date: %v", err)
		}

		scenario := Scenario{
			Name:         entry.Get("name").String(),
			Kind:         kind,
			Market:       entry.Get("market").String(),
			Start:        start,
			End:          end,
			Seed:         entry.Get("seed").Int(),
			Shape:        entry.Get("shape").Float(),
			InitialPrice: entry.Get("initialprice").Float(),
			Drift:        entry.Get("drift").Float(),
			Volatility:   entry.Get("volatility").Float(),
		}

		err = scenario.Validate()
		if err != nil {
			return nil, fmt.Errorf("validating scenario %q: %w", scenario.Name, err)
		}

		scenarios = append(scenarios, scenario)
	}

	return scenarios, nil
}

// LoadScenarios loads scenario definitions from the provided file path.
func LoadScenarios(filepath string) ([]Scenario, error) {
	readb, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios from file with path '%s': %v", filepath, err)
	}

	b := gjson.ParseBytes(readb)

	data := b.Get("scenarios").Array()
	if len(data) == 0 {
		return nil, fmt.Errorf("no scenarios defined in file with path '%s'", filepath)
	}

	scenarios, err := ParseScenarios(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scenarios: %w", err)
	}

	return scenarios, nil
}
