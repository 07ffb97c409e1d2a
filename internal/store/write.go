package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/outbreak/internal/sampler"
	"github.com/roach88/outbreak/internal/trace"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	StatusRunning     RunStatus = "running"
	StatusFinished    RunStatus = "finished"
	StatusInterrupted RunStatus = "interrupted"
	StatusFailed      RunStatus = "failed"
)

// Run is one stored chain execution.
type Run struct {
	ID         string    `json:"id"`
	Seed       uint64    `json:"seed"`
	Config     string    `json:"config"`
	ConfigHash string    `json:"config_hash"`
	CreatedSeq int64     `json:"created_seq"`
	Status     RunStatus `json:"status"`
	Iterations int       `json:"iterations"`

	// DataHash identifies the case file the run read, empty for runs
	// recorded before it was tracked.
	DataHash string `json:"data_hash,omitempty"`

	// Draws and DrawsHash summarize the random stream the run consumed.
	// Both are set when the run stops.
	Draws     int64  `json:"draws"`
	DrawsHash string `json:"draws_hash,omitempty"`
}

// Completion is what a run records when it stops.
type Completion struct {
	Status     RunStatus
	Iterations int
	Draws      int64
	DrawsHash  string
}

// CreateRun inserts a new run with a time-ordered (v7) UUID and the next
// logical sequence number. config must be a deterministic serialization of
// the run configuration; it is stored verbatim. dataHash identifies the case
// data the run reads.
func (s *Store) CreateRun(ctx context.Context, seed uint64, config []byte, dataHash string) (Run, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Run{}, fmt.Errorf("create run: generate id: %w", err)
	}

	run := Run{
		ID:         id.String(),
		Seed:       seed,
		Config:     string(config),
		ConfigHash: trace.ConfigHash(config),
		Status:     StatusRunning,
		DataHash:   dataHash,
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(created_seq), 0) + 1 FROM runs`).Scan(&run.CreatedSeq); err != nil {
			return fmt.Errorf("next seq: %w", err)
		}

		// Seeds use the full uint64 range, which SQLite INTEGER cannot hold.
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, seed, config, config_hash, created_seq, status, iterations, data_hash)
			VALUES (?, ?, ?, ?, ?, ?, 0, ?)
		`,
			run.ID,
			strconv.FormatUint(seed, 10),
			run.Config,
			run.ConfigHash,
			run.CreatedSeq,
			string(run.Status),
			run.DataHash,
		)
		return err
	})
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// FinishRun records how a run stopped.
func (s *Store) FinishRun(ctx context.Context, runID string, c Completion) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, iterations = ?, draws = ?, draws_hash = ? WHERE id = ?
	`, string(c.Status), c.Iterations, c.Draws, c.DrawsHash, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}

// WriteSample inserts one sample for a run.
// Uses ON CONFLICT DO NOTHING for idempotency - rewriting an iteration is
// silently ignored.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteSample(ctx context.Context, runID string, sample sampler.Sample) error {
	tInf, err := marshalTimes(sample.State.TInf)
	if err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	alpha, err := marshalAncestry(sample.State.Alpha)
	if err != nil {
		return fmt.Errorf("write sample: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO samples (run_id, iter, loglike, mu, t_inf, alpha, state_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, iter) DO NOTHING
	`,
		runID,
		sample.Iteration,
		sample.LogLikelihood,
		sample.State.Mu,
		tInf,
		alpha,
		sample.StateHash,
	)
	if err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return nil
}

// Sink returns a sampler.Sink that writes samples to runID.
func (s *Store) Sink(runID string) sampler.Sink {
	return sampler.SinkFunc(func(ctx context.Context, sample sampler.Sample) error {
		return s.WriteSample(ctx, runID, sample)
	})
}
