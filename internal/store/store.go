package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/trials"
)

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Run kinds.
const (
	KindSimulate = "simulate"
	KindAnalyze  = "analyze"
)

// ErrRunNotFound is returned when a run ID has no stored daily counts.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS simulation_runs (
    id          UUID PRIMARY KEY,
    kind        TEXT NOT NULL,
    seed        BIGINT NOT NULL,
    parameters  JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS daily_counts (
    run_id      UUID NOT NULL REFERENCES simulation_runs(id) ON DELETE CASCADE,
    day         INTEGER NOT NULL,
    susceptible INTEGER NOT NULL,
    infected    INTEGER NOT NULL,
    recovered   INTEGER NOT NULL,
    dead        INTEGER NOT NULL,
    vaccinated  INTEGER NOT NULL,
    PRIMARY KEY (run_id, day)
);
CREATE TABLE IF NOT EXISTS trial_summaries (
    run_id        UUID NOT NULL REFERENCES simulation_runs(id) ON DELETE CASCADE,
    trial         INTEGER NOT NULL,
    mean_infected DOUBLE PRECISION NOT NULL,
    mean_deaths   DOUBLE PRECISION NOT NULL,
    deaths_stddev DOUBLE PRECISION,
    PRIMARY KEY (run_id, trial)
);`

const sqlInsertRun = `
        INSERT INTO simulation_runs (id, kind, seed, parameters, created_at)
        VALUES ($1, $2, $3, $4, $5);
    `

const sqlGetDailyCounts = `
        SELECT day, susceptible, infected, recovered, dead, vaccinated
        FROM daily_counts
        WHERE run_id = $1
        ORDER BY day ASC;
    `

var (
	dailyColumns   = []string{"run_id", "day", "susceptible", "infected", "recovered", "dead", "vaccinated"}
	summaryColumns = []string{"run_id", "trial", "mean_infected", "mean_deaths", "deaths_stddev"}
)

// Run is one invocation of simulate or analyze along with everything it produced.
type Run struct {
	ID   uuid.UUID
	Kind string
	Seed int64
	// Parameters is stored as JSON so the schema does not track every knob.
	Parameters interface{}
	CreatedAt  time.Time
	Daily      []epidemic.DailyCounts
	Summaries  []trials.Summary
}

// Store persists simulation runs to PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// Migrate creates the tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// PersistRun writes the run and its tables in a single transaction.
func (s *Store) PersistRun(ctx context.Context, run Run) error {
	if run.ID == uuid.Nil {
		return errors.New("run id is required")
	}
	params, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(run.Parameters)
	if err != nil {
		return fmt.Errorf("failed to encode run parameters: %w", err)
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if _, err := tx.Exec(ctx, sqlInsertRun, run.ID, run.Kind, run.Seed, params, createdAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(run.Daily) > 0 {
		if err := s.copyDaily(ctx, tx, run.ID, run.Daily); err != nil {
			return err
		}
	}
	if len(run.Summaries) > 0 {
		if err := s.copySummaries(ctx, tx, run.ID, run.Summaries); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Debug("Run persisted",
		zap.Stringer("run_id", run.ID),
		zap.Int("days", len(run.Daily)),
		zap.Int("trials", len(run.Summaries)),
	)
	return nil
}

func (s *Store) copyDaily(ctx context.Context, tx pgx.Tx, runID uuid.UUID, daily []epidemic.DailyCounts) error {
	rows := make([][]interface{}, len(daily))
	for i, d := range daily {
		rows[i] = []interface{}{runID, d.Day, d.Susceptible, d.Infected, d.Recovered, d.Dead, d.Vaccinated}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"daily_counts"}, dailyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy daily counts: %w", err)
	}
	if int(n) != len(daily) {
		return fmt.Errorf("mismatch in copied daily counts: expected %d, got %d", len(daily), n)
	}
	return nil
}

func (s *Store) copySummaries(ctx context.Context, tx pgx.Tx, runID uuid.UUID, summaries []trials.Summary) error {
	rows := make([][]interface{}, len(summaries))
	for i, sm := range summaries {
		// A one-day trial has no sample deviation; store NULL.
		var stddev interface{}
		if !math.IsNaN(sm.DeathsStdDev) {
			stddev = sm.DeathsStdDev
		}
		rows[i] = []interface{}{runID, sm.Trial, sm.MeanInfected, sm.MeanDeaths, stddev}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"trial_summaries"}, summaryColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy trial summaries: %w", err)
	}
	if int(n) != len(summaries) {
		return fmt.Errorf("mismatch in copied trial summaries: expected %d, got %d", len(summaries), n)
	}
	return nil
}

// GetDailyCounts loads the daily table of a stored simulate run.
func (s *Store) GetDailyCounts(ctx context.Context, runID uuid.UUID) ([]epidemic.DailyCounts, error) {
	rows, err := s.pool.Query(ctx, sqlGetDailyCounts, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily counts: %w", err)
	}
	defer rows.Close()

	var out []epidemic.DailyCounts
	for rows.Next() {
		var d epidemic.DailyCounts
		if err := rows.Scan(&d.Day, &d.Susceptible, &d.Infected, &d.Recovered, &d.Dead, &d.Vaccinated); err != nil {
			return nil, fmt.Errorf("failed to scan daily count row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return out, nil
}
