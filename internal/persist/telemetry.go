package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// RunRecord is one finished game.
type RunRecord struct {
	Session    string
	Run        int
	Seed       string
	FinalWave  int
	Score      int
	Deaths     int
	Saves      int
	Threat     float64
	Resistance float64
	Duration   time.Duration
}

// WaveRecord is one completed wave.
type WaveRecord struct {
	Session   string
	Run       int
	Wave      int
	Formation string
	Milestone string
	Spawned   int
	Duration  time.Duration
	TimedOut  bool
	Threat    float64
}

// Batch is the unit written per flush.
type Batch struct {
	Runs  []RunRecord
	Waves []WaveRecord
}

func (b Batch) Len() int { return len(b.Runs) + len(b.Waves) }

type TelemetryRepo struct {
	db *DB
}

func NewTelemetryRepo(db *DB) *TelemetryRepo {
	return &TelemetryRepo{db: db}
}

// WriteBatch writes every record in b in a single transaction. On error
// nothing is written and the caller keeps the batch for the next flush.
func (r *TelemetryRepo) WriteBatch(ctx context.Context, b Batch) error {
	if b.Len() == 0 {
		return nil
	}
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		for _, w := range b.Waves {
			if _, err := tx.Exec(ctx,
				`INSERT INTO wave_records (session, run, wave, formation, milestone, spawned, duration_ms, timed_out, threat)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				w.Session, w.Run, w.Wave, w.Formation, w.Milestone, w.Spawned,
				w.Duration.Milliseconds(), w.TimedOut, w.Threat,
			); err != nil {
				return fmt.Errorf("wave insert: %w", err)
			}
		}
		for _, run := range b.Runs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO director_runs (session, run, seed, final_wave, score, deaths, saves, threat, resistance, duration_ms)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				 ON CONFLICT (session, run) DO NOTHING`,
				run.Session, run.Run, run.Seed, run.FinalWave, run.Score, run.Deaths, run.Saves,
				run.Threat, run.Resistance, run.Duration.Milliseconds(),
			); err != nil {
				return fmt.Errorf("run insert: %w", err)
			}
		}
		return nil
	})
}

// BestRuns returns the highest-scoring runs across all sessions.
func (r *TelemetryRepo) BestRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT session, run, seed, final_wave, score, deaths, saves, threat, resistance, duration_ms
		 FROM director_runs
		 ORDER BY score DESC, id
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RunRecord
	for rows.Next() {
		var (
			rec RunRecord
			ms  int64
		)
		if err := rows.Scan(
			&rec.Session, &rec.Run, &rec.Seed, &rec.FinalWave, &rec.Score,
			&rec.Deaths, &rec.Saves, &rec.Threat, &rec.Resistance, &ms,
		); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(ms) * time.Millisecond
		result = append(result, rec)
	}
	return result, rows.Err()
}
