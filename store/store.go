package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/synth/shared"
	"github.com/dnldd/synth/simulate"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createRunTableSQL = "CREATE TABLE IF NOT EXISTS run (id TEXT PRIMARY KEY, scenario TEXT, " +
		"kind TEXT, market TEXT, startdate INTEGER, enddate INTEGER, seed INTEGER, " +
		"shape REAL, initialprice REAL, drift REAL, volatility REAL, createdon INTEGER)"
	createVolumeSampleTableSQL = "CREATE TABLE IF NOT EXISTS volumesample (runid TEXT, " +
		"date INTEGER, volume INTEGER)"
	createPriceSampleTableSQL = "CREATE TABLE IF NOT EXISTS pricesample (runid TEXT, " +
		"date INTEGER, price REAL)"
	persistRunSQL = "INSERT INTO run(id, scenario, kind, market, startdate, enddate, seed, " +
		"shape, initialprice, drift, volatility, createdon) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)"
	persistVolumeSampleSQL = "INSERT INTO volumesample(runid, date, volume) VALUES(?,?,?)"
	persistPriceSampleSQL  = "INSERT INTO pricesample(runid, date, price) VALUES(?,?,?)"
	findRunSQL             = "SELECT id, scenario, kind, market, startdate, enddate, seed, " +
		"shape, initialprice, drift, volatility, createdon FROM run WHERE id = ?"
	findVolumeSamplesSQL = "SELECT date, volume FROM volumesample WHERE runid = ? ORDER BY date ASC"
	findPriceSamplesSQL  = "SELECT date, price FROM pricesample WHERE runid = ? ORDER BY date ASC"
)

// ErrRunNotFound is returned when a run with the requested id has not been
// persisted.
var ErrRunNotFound = errors.New("run not found")

// RunStorer defines the requirements for storing simulation runs.
type RunStorer interface {
	// PersistRun stores the provided completed run to the database.
	PersistRun(ctx context.Context, run *simulate.Run) error
	// FetchRun retrieves the persisted run with the provided id.
	FetchRun(ctx context.Context, id string) (*simulate.Run, error)
}

// StoreConfig is the configuration for the run store.
type StoreConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the store logger.
	Logger *zerolog.Logger
}

// Store represents the simulation run store.
type Store struct {
	cfg    *StoreConfig
	client *rqlitehttp.Client
}

// Ensure the store implements the RunStorer interface.
var _ RunStorer = (*Store)(nil)

// NewStore initializes a new simulation run store.
func NewStore(ctx context.Context, cfg *StoreConfig) (*Store, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating store client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	store := &Store{
		cfg:    cfg,
		client: client,
	}

	err = store.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping store: %w", err)
	}

	return store, nil
}

// bootstrap initializes the store tables.
func (s *Store) bootstrap(ctx context.Context) error {
	_, err := s.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createRunTableSQL},
		{SQL: createVolumeSampleTableSQL},
		{SQL: createPriceSampleTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// runStatements assembles the sql statements persisting the provided run and
// its samples.
func runStatements(run *simulate.Run) (rqlitehttp.SQLStatements, error) {
	kind := run.Scenario.Kind

	statements := rqlitehttp.SQLStatements{
		{
			SQL: persistRunSQL,
			PositionalParams: []any{run.ID, run.Scenario.Name, kind.String(), run.Scenario.Market,
				run.Scenario.Start.Unix(), run.Scenario.End.Unix(), run.Scenario.Seed,
				run.Scenario.Shape, run.Scenario.InitialPrice, run.Scenario.Drift,
				run.Scenario.Volatility, run.CreatedOn.Unix()},
		},
	}

	switch {
	case run.Volume != nil:
		for idx := range run.Volume.Volumes {
			statements = append(statements, &rqlitehttp.SQLStatement{
				SQL: persistVolumeSampleSQL,
				PositionalParams: []any{run.ID, run.Volume.Dates[idx].Unix(),
					run.Volume.Volumes[idx]},
			})
		}
	case run.Prices != nil:
		for idx := range run.Prices.Values {
			statements = append(statements, &rqlitehttp.SQLStatement{
				SQL: persistPriceSampleSQL,
				PositionalParams: []any{run.ID, run.Prices.Dates[idx].Unix(),
					run.Prices.Values[idx]},
			})
		}
	default:
		return nil, fmt.Errorf("run %s has no series to persist", run.ID)
	}

	return statements, nil
}

// PersistRun stores the provided completed run to the database.
func (s *Store) PersistRun(ctx context.Context, run *simulate.Run) error {
	statements, err := runStatements(run)
	if err != nil {
		s.cfg.Logger.Error().Msgf("unexpected run state for persistence: %s", spew.Sdump(run))
		return err
	}

	resp, err := s.client.Execute(ctx, statements,
		&rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("persisting run %s: %d -> %s", run.ID, idx, errStr)
	}

	return nil
}

// assocString returns the string value of the provided column.
func assocString(row map[string]any, column string) (string, error) {
	v, ok := row[column].(string)
	if !ok {
		return "", fmt.Errorf("column %s is not a string: %v", column, row[column])
	}

	return v, nil
}

// assocInt64 returns the integer value of the provided column. Numeric
// values arrive from the wire as json floats.
func assocInt64(row map[string]any, column string) (int64, error) {
	switch v := row[column].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("column %s is not an integer: %v", column, row[column])
	}
}

// assocFloat returns the float value of the provided column.
func assocFloat(row map[string]any, column string) (float64, error) {
	switch v := row[column].(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("column %s is not a float: %v", column, row[column])
	}
}

// runFromRow reconstructs a run's metadata from the provided run table row.
func runFromRow(row map[string]any) (*simulate.Run, error) {
	id, err := assocString(row, "id")
	if err != nil {
		return nil, err
	}

	name, err := assocString(row, "scenario")
	if err != nil {
		return nil, err
	}

	kindStr, err := assocString(row, "kind")
	if err != nil {
		return nil, err
	}

	kind, err := simulate.ParseKind(kindStr)
	if err != nil {
		return nil, fmt.Errorf("parsing persisted run kind: %w", err)
	}

	market, err := assocString(row, "market")
	if err != nil {
		return nil, err
	}

	start, err := assocInt64(row, "startdate")
	if err != nil {
		return nil, err
	}

	end, err := assocInt64(row, "enddate")
	if err != nil {
		return nil, err
	}

	seed, err := assocInt64(row, "seed")
	if err != nil {
		return nil, err
	}

	shape, err := assocFloat(row, "shape")
	if err != nil {
		return nil, err
	}

	initialPrice, err := assocFloat(row, "initialprice")
	if err != nil {
		return nil, err
	}

	drift, err := assocFloat(row, "drift")
	if err != nil {
		return nil, err
	}

	volatility, err := assocFloat(row, "volatility")
	if err != nil {
		return nil, err
	}

	createdOn, err := assocInt64(row, "createdon")
	if err != nil {
		return nil, err
	}

	run := &simulate.Run{
		ID: id,
		Scenario: simulate.Scenario{
			Name:         name,
			Kind:         kind,
			Market:       market,
			Start:        time.Unix(start, 0).UTC(),
			End:          time.Unix(end, 0).UTC(),
			Seed:         seed,
			Shape:        shape,
			InitialPrice: initialPrice,
			Drift:        drift,
			Volatility:   volatility,
		},
		CreatedOn: time.Unix(createdOn, 0).UTC(),
	}

	return run, nil
}

// volumeSeriesFromRows reconstructs a volume series from the provided sample
// rows.
func volumeSeriesFromRows(market string, rows []map[string]any) (*shared.VolumeSeries, error) {
	series := &shared.VolumeSeries{
		Market:  market,
		Dates:   make([]time.Time, 0, len(rows)),
		Volumes: make([]int64, 0, len(rows)),
	}

	for idx := range rows {
		date, err := assocInt64(rows[idx], "date")
		if err != nil {
			return nil, err
		}

		volume, err := assocInt64(rows[idx], "volume")
		if err != nil {
			return nil, err
		}

		series.Dates = append(series.Dates, time.Unix(date, 0).UTC())
		series.Volumes = append(series.Volumes, volume)
	}

	err := series.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating persisted volume series: %w", err)
	}

	return series, nil
}

// priceSeriesFromRows reconstructs a price series from the provided sample
// rows.
func priceSeriesFromRows(market string, rows []map[string]any) (*shared.Series, error) {
	series := &shared.Series{
		Market: market,
		Dates:  make([]time.Time, 0, len(rows)),
		Values: make([]float64, 0, len(rows)),
	}

	for idx := range rows {
		date, err := assocInt64(rows[idx], "date")
		if err != nil {
			return nil, err
		}

		price, err := assocFloat(rows[idx], "price")
		if err != nil {
			return nil, err
		}

		series.Dates = append(series.Dates, time.Unix(date, 0).UTC())
		series.Values = append(series.Values, price)
	}

	err := series.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating persisted price series: %w", err)
	}

	return series, nil
}

// FetchRun retrieves the persisted run with the provided id, reconstructing
// its scenario metadata and sample series.
func (s *Store) FetchRun(ctx context.Context, id string) (*simulate.Run, error) {
	resp, err := s.client.QuerySingle(ctx, findRunSQL, id)
	if err != nil {
		return nil, err
	}

	results := resp.GetQueryResultsAssoc()
	if len(results) == 0 || len(results[0].Rows) == 0 {
		return nil, ErrRunNotFound
	}

	run, err := runFromRow(results[0].Rows[0])
	if err != nil {
		return nil, fmt.Errorf("reconstructing run %s: %w", id, err)
	}

	switch run.Scenario.Kind {
	case simulate.Volume:
		resp, err := s.client.QuerySingle(ctx, findVolumeSamplesSQL, id)
		if err != nil {
			return nil, err
		}

		results := resp.GetQueryResultsAssoc()
		if len(results) == 0 {
			return nil, fmt.Errorf("no volume samples persisted for run %s", id)
		}

		run.Volume, err = volumeSeriesFromRows(run.Scenario.Market, results[0].Rows)
		if err != nil {
			return nil, fmt.Errorf("reconstructing volume series for run %s: %w", id, err)
		}
	case simulate.Price:
		resp, err := s.client.QuerySingle(ctx, findPriceSamplesSQL, id)
		if err != nil {
			return nil, err
		}

		results := resp.GetQueryResultsAssoc()
		if len(results) == 0 {
			return nil, fmt.Errorf("no price samples persisted for run %s", id)
		}

		run.Prices, err = priceSeriesFromRows(run.Scenario.Market, results[0].Rows)
		if err != nil {
			return nil, fmt.Errorf("reconstructing price series for run %s: %w", id, err)
		}
	}

	return run, nil
}
