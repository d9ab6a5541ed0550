package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/synth/chart"
	"github.com/dnldd/synth/simulate"
	"github.com/dnldd/synth/store"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
)

// SimulatorConfig represents the configuration struct for the simulator
// service.
type SimulatorConfig struct {
	// ScenarioFilePath is the filepath to the scenario definitions.
	ScenarioFilePath string
	// OutputDir is the directory csv exports are written to.
	OutputDir string
	// Persist is the run persistence flag.
	Persist bool
	// StoreEndpoint represents the run store connection endpoint.
	StoreEndpoint string
	// StoreUser is the run store user.
	StoreUser string
	// StorePass is the run store user pass.
	StorePass string
	// RunIntervalHours is the interval between scheduled scenario re-runs.
	// Zero runs all scenarios once and terminates the service.
	RunIntervalHours int
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *SimulatorConfig) Validate() error {
	var errs error

	if cfg.ScenarioFilePath == "" {
		errs = errors.Join(errs, fmt.Errorf("scenario filepath cannot be an empty string"))
	}
	if cfg.OutputDir == "" {
		errs = errors.Join(errs, fmt.Errorf("output directory cannot be an empty string"))
	}
	if cfg.Persist && cfg.StoreEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("store endpoint cannot be an empty string when persisting"))
	}
	if cfg.RunIntervalHours < 0 {
		errs = errors.Join(errs, fmt.Errorf("run interval cannot be negative, got %d", cfg.RunIntervalHours))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// Simulator represents a synthetic market data simulation service.
type Simulator struct {
	cfg          *SimulatorConfig
	scenarios    []simulate.Scenario
	manager      *simulate.Manager
	runStore     *store.Store
	jobScheduler *gocron.Scheduler
	exports      chan *simulate.Run
	logger       *zerolog.Logger
	wg           sync.WaitGroup
}

// NewSimulator initializes a new simulator service.
func NewSimulator(ctx context.Context, cfg *SimulatorConfig) (*Simulator, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating simulator config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "simulator").Logger()

	scenarios, err := simulate.LoadScenarios(cfg.ScenarioFilePath)
	if err != nil {
		return nil, fmt.Errorf("loading scenarios: %w", err)
	}

	var runStore *store.Store
	var persistRun func(ctx context.Context, run *simulate.Run) error
	if cfg.Persist {
		storeLogger := logger.With().Str("component", "store").Logger()
		runStore, err = store.NewStore(ctx, &store.StoreConfig{
			Endpoint: cfg.StoreEndpoint,
			User:     cfg.StoreUser,
			Pass:     cfg.StorePass,
			Logger:   &storeLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating run store: %w", err)
		}

		persistRun = runStore.PersistRun
	}

	managerLogger := logger.With().Str("component", "simulationmanager").Logger()
	manager := simulate.NewManager(&simulate.ManagerConfig{
		PersistRun: persistRun,
		Logger:     &managerLogger,
	})

	exports := make(chan *simulate.Run, bufferSize)
	manager.Subscribe(&exports)

	service := &Simulator{
		cfg:          cfg,
		scenarios:    scenarios,
		manager:      manager,
		runStore:     runStore,
		jobScheduler: gocron.NewScheduler(time.UTC),
		exports:      exports,
		logger:       &logger,
	}

	return service, nil
}

// FetchPersistedRun retrieves the persisted run with the provided id from
// the run store.
func (s *Simulator) FetchPersistedRun(ctx context.Context, id string) (*simulate.Run, error) {
	if s.runStore == nil {
		return nil, fmt.Errorf("run persistence is not enabled")
	}

	return s.runStore.FetchRun(ctx, id)
}

// runScenarios signals a run for every loaded scenario.
func (s *Simulator) runScenarios() {
	for idx := range s.scenarios {
		s.manager.SendRunSignal(simulate.RunSignal{Scenario: s.scenarios[idx]})
	}
}

// handleExports writes completed runs to the output directory as they arrive.
func (s *Simulator) handleExports(ctx context.Context) {
	var exported int
	for {
		select {
		case <-ctx.Done():
			return
		case run := <-s.exports:
			path, err := chart.ExportRun(s.cfg.OutputDir, run)
			if err != nil {
				s.logger.Error().Msgf("exporting run %s: %v", run.ID, err)
				continue
			}

			s.logger.Info().Msgf("exported %s run for %s to %s",
				run.Scenario.Kind.String(), run.Scenario.Market, path)

			exported++
			if s.cfg.RunIntervalHours == 0 && exported == len(s.scenarios) {
				// All scenarios of a one-shot run are exported, terminate
				// the service.
				s.logger.Info().Msgf("all %d scenarios simulated, review csv exports in %s",
					exported, s.cfg.OutputDir)
				s.cfg.Cancel()
			}
		}
	}
}

// Run handles the lifecycle processes of the simulator service.
func (s *Simulator) Run(ctx context.Context) {
	s.wg.Add(2)

	go func() {
		s.manager.Run(ctx)
		s.wg.Done()
	}()

	go func() {
		s.handleExports(ctx)
		s.wg.Done()
	}()

	s.runScenarios()

	if s.cfg.RunIntervalHours > 0 {
		_, err := s.jobScheduler.Every(s.cfg.RunIntervalHours).Hours().Do(s.runScenarios)
		if err != nil {
			s.logger.Error().Msgf("scheduling scenario re-runs: %v", err)
			s.cfg.Cancel()
		}

		s.jobScheduler.StartAsync()
		defer s.jobScheduler.Stop()
	}

	s.wg.Wait()
}
