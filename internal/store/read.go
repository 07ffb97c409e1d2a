package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/roach88/outbreak/internal/sampler"
)

const runColumns = `id, seed, config, config_hash, created_seq, status, iterations, data_hash, draws, draws_hash`

// ReadRun retrieves a run by ID.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// LatestRun returns the most recently created run.
// Returns an error wrapping sql.ErrNoRows if the store is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY created_seq DESC
		LIMIT 1
	`)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns all runs in creation order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSamples returns every sample of a run ordered by iteration.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadSamples(ctx context.Context, runID string) ([]sampler.Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT iter, loglike, mu, t_inf, alpha, state_hash
		FROM samples
		WHERE run_id = ?
		ORDER BY iter ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()
	return scanSamples(rows)
}

// LastSamples returns the last n samples of a run, oldest first.
func (s *Store) LastSamples(ctx context.Context, runID string, n int) ([]sampler.Sample, error) {
	if n <= 0 {
		return s.ReadSamples(ctx, runID)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT iter, loglike, mu, t_inf, alpha, state_hash
		FROM samples
		WHERE run_id = ?
		ORDER BY iter DESC
		LIMIT ?
	`, runID, n)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples, err := scanSamples(rows)
	if err != nil {
		return nil, err
	}
	slices.Reverse(samples)
	return samples, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run    Run
		seed   string
		status string
	)
	if err := row.Scan(&run.ID, &seed, &run.Config, &run.ConfigHash, &run.CreatedSeq, &status, &run.Iterations,
		&run.DataHash, &run.Draws, &run.DrawsHash); err != nil {
		return Run{}, err
	}
	v, err := strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: invalid seed %q: %w", run.ID, seed, err)
	}
	run.Seed = v
	run.Status = RunStatus(status)
	return run, nil
}

func scanSamples(rows *sql.Rows) ([]sampler.Sample, error) {
	samples := []sampler.Sample{}
	for rows.Next() {
		var (
			sample  sampler.Sample
			loglike sql.NullFloat64
			tInf    string
			alpha   string
		)
		if err := rows.Scan(&sample.Iteration, &loglike, &sample.State.Mu, &tInf, &alpha, &sample.StateHash); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}

		// SQLite stores NaN as NULL.
		sample.LogLikelihood = math.NaN()
		if loglike.Valid {
			sample.LogLikelihood = loglike.Float64
		}

		times, err := unmarshalTimes(tInf)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", sample.Iteration, err)
		}
		ancestry, err := unmarshalAncestry(alpha)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", sample.Iteration, err)
		}
		sample.State.TInf = times
		sample.State.Alpha = ancestry
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}
