package simulate

import (
	"context"
	"time"

	"github.com/dnldd/synth/shared"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
	// maxWorkers is the maximum number of concurrent workers.
	maxWorkers = 8
	// minSubscriberBuffer is the minimum buffer size for subscribers.
	minSubscriberBuffer = 8
)

// Run represents a completed simulation run for a scenario.
type Run struct {
	ID        string
	Scenario  Scenario
	Volume    *shared.VolumeSeries
	Prices    *shared.Series
	CreatedOn time.Time
}

// RunSignal represents a signal to execute the provided scenario.
type RunSignal struct {
	Scenario Scenario
}

// RunRequest represents a request to fetch the latest completed run for a
// scenario.
type RunRequest struct {
	Scenario string
	Response chan *Run
}

// NewRunRequest initializes a new run request.
func NewRunRequest(scenario string) *RunRequest {
	return &RunRequest{
		Scenario: scenario,
		Response: make(chan *Run, 1),
	}
}

// ManagerConfig represents the simulation manager configuration.
type ManagerConfig struct {
	// PersistRun stores the provided completed run. It may be nil when
	// persistence is disabled.
	PersistRun func(ctx context.Context, run *Run) error
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Manager executes simulation scenarios and relays completed runs to
// subscribers.
type Manager struct {
	cfg           *ManagerConfig
	runSignals    chan RunSignal
	completedRuns chan *Run
	runRequests   chan *RunRequest
	latestRuns    map[string]*Run
	subscribers   []*chan *Run
	workers       chan struct{}
}

// NewManager initializes a new simulation manager.
func NewManager(cfg *ManagerConfig) *Manager {
	return &Manager{
		cfg:           cfg,
		runSignals:    make(chan RunSignal, bufferSize),
		completedRuns: make(chan *Run, bufferSize),
		runRequests:   make(chan *RunRequest, bufferSize),
		latestRuns:    make(map[string]*Run),
		subscribers:   make([]*chan *Run, 0, minSubscriberBuffer),
		workers:       make(chan struct{}, maxWorkers),
	}
}

// Subscribe registers the provided subscriber for completed runs.
func (m *Manager) Subscribe(sub *chan *Run) {
	m.subscribers = append(m.subscribers, sub)
}

// notifySubscribers notifies subscribers of the completed run.
func (m *Manager) notifySubscribers(run *Run) {
	for k := range m.subscribers {
		*m.subscribers[k] <- run
	}
}

// SendRunSignal relays the provided run signal for processing.
func (m *Manager) SendRunSignal(signal RunSignal) {
	select {
	case m.runSignals <- signal:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("run signal channel at capacity: %d/%d",
			len(m.runSignals), bufferSize)
	}
}

// SendRunRequest relays the provided run request for processing.
func (m *Manager) SendRunRequest(req *RunRequest) {
	select {
	case m.runRequests <- req:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("run request channel at capacity: %d/%d",
			len(m.runRequests), bufferSize)
	}
}

// handleRunSignal executes the provided scenario and relays the completed run.
func (m *Manager) handleRunSignal(signal RunSignal) {
	scenario := signal.Scenario

	run := &Run{
		ID:        uuid.NewString(),
		Scenario:  scenario,
		CreatedOn: time.Now().UTC(),
	}

	switch scenario.Kind {
	case Volume:
		generator, err := NewVolumeGenerator(&VolumeConfig{
			Market: scenario.Market,
			Start:  scenario.Start,
			End:    scenario.End,
			Shape:  scenario.Shape,
			Seed:   scenario.Seed,
		})
		if err != nil {
			m.cfg.Logger.Error().Msgf("creating volume generator for %s: %v", scenario.Name, err)
			return
		}

		run.Volume, err = generator.Generate()
		if err != nil {
			m.cfg.Logger.Error().Msgf("generating volume series for %s: %v", scenario.Name, err)
			return
		}
	case Price:
		generator, err := NewPathGenerator(&GBMConfig{
			Market:       scenario.Market,
			InitialPrice: scenario.InitialPrice,
			Drift:        scenario.Drift,
			Volatility:   scenario.Volatility,
			Horizon:      1,
			Steps:        TradingDaysPerYear,
			Seed:         scenario.Seed,
		})
		if err != nil {
			m.cfg.Logger.Error().Msgf("creating path generator for %s: %v", scenario.Name, err)
			return
		}

		run.Prices, err = generator.GenerateDaily(scenario.Start, scenario.End)
		if err != nil {
			m.cfg.Logger.Error().Msgf("generating price series for %s: %v", scenario.Name, err)
			return
		}
	default:
		m.cfg.Logger.Error().Msgf("unknown scenario kind for %s: %d", scenario.Name, scenario.Kind)
		return
	}

	m.completedRuns <- run
}

// handleCompletedRun records, persists and relays the provided completed run.
func (m *Manager) handleCompletedRun(ctx context.Context, run *Run) {
	m.latestRuns[run.Scenario.Name] = run

	if m.cfg.PersistRun != nil {
		err := m.cfg.PersistRun(ctx, run)
		if err != nil {
			m.cfg.Logger.Error().Msgf("persisting run for %s: %v", run.Scenario.Name, err)
		}
	}

	m.notifySubscribers(run)
}

// handleRunRequest responds to the provided run request with the latest
// completed run for the scenario, or nil if none exists.
func (m *Manager) handleRunRequest(req *RunRequest) {
	req.Response <- m.latestRuns[req.Scenario]
}

// Run manages the lifecycle processes of the simulation manager.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case signal := <-m.runSignals:
			m.workers <- struct{}{}
			go func(signal RunSignal) {
				m.handleRunSignal(signal)
				<-m.workers
			}(signal)
		case run := <-m.completedRuns:
			m.handleCompletedRun(ctx, run)
		case req := <-m.runRequests:
			m.handleRunRequest(req)
		}
	}
}
