package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"energy-core/internal/logging"
)

// Job is one row popped off calc_job_queue for processing.
type Job struct {
	JobID    int64
	CalcID   int64
	ParamsTS time.Time
}

// EnqueueJob inserts a queued job for the given params timestamp, creating
// the backing calc_runs row first. A second enqueue for the same params_ts
// is a no-op (spec §5/§9: the queue coalesces repeat triggers for params
// that have not changed since the last queued job).
func (s *Store) EnqueueJob(ctx context.Context, paramsTS time.Time) (int64, error) {
	calcID, err := s.CreateRun(ctx, paramsTS)
	if err != nil {
		return 0, err
	}
	var jobID int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO calc_job_queue (calc_id, params_ts, status) VALUES ($1, $2, 'queued')
		ON CONFLICT (params_ts) DO NOTHING
		RETURNING job_id`,
		calcID, paramsTS,
	).Scan(&jobID)
	if err == sql.ErrNoRows {
		// Already queued for this params_ts; the earlier job wins and the
		// calc_runs row created above is removed again.
		_, err = s.db.ExecContext(ctx, `DELETE FROM calc_runs WHERE calc_id=$1`, calcID)
		return 0, err
	}
	if err != nil {
		return 0, err
	}
	_, err = s.db.ExecContext(ctx, `NOTIFY calc_queue`)
	return jobID, err
}

// sqlPickCoalesce pops the newest queued job, superseding any older queued
// jobs to 'skipped' in the same statement, grounded on
// original_source/calc/listener.py's SQL_PICK_COALESCE.
const sqlPickCoalesce = `
WITH next_job AS (
	SELECT job_id, calc_id, params_ts
	FROM calc_job_queue
	WHERE status = 'queued'
	ORDER BY created_at DESC
	LIMIT 1
	FOR UPDATE SKIP LOCKED
),
superseded AS (
	UPDATE calc_job_queue
	SET status = 'skipped'
	WHERE status = 'queued'
	  AND job_id <> (SELECT job_id FROM next_job)
	  AND created_at <= (SELECT created_at FROM next_job)
)
UPDATE calc_job_queue
SET status = 'picked'
WHERE job_id = (SELECT job_id FROM next_job)
RETURNING job_id, calc_id, params_ts
`

// PickAndCoalesce pops the single newest queued job, marking every older
// still-queued job 'skipped' (spec §5: "at most one active run per queue;
// superseded older jobs are marked skipped, never run"). Returns (nil, nil)
// when the queue is empty.
func (s *Store) PickAndCoalesce(ctx context.Context) (*Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var j Job
	err = tx.QueryRowContext(ctx, sqlPickCoalesce).Scan(&j.JobID, &j.CalcID, &j.ParamsTS)
	if err == sql.ErrNoRows {
		return nil, tx.Commit()
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &j, nil
}

// MarkJobDone transitions a queue row to 'done'.
func (s *Store) MarkJobDone(ctx context.Context, jobID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE calc_job_queue SET status='done' WHERE job_id=$1`, jobID)
	return err
}

// MarkJobFailed transitions a queue row to 'failed'.
func (s *Store) MarkJobFailed(ctx context.Context, jobID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE calc_job_queue SET status='failed' WHERE job_id=$1`, jobID)
	return err
}

// Listen opens a pq.Listener on the calc_queue channel and forwards a signal
// on the returned channel every time NOTIFY fires, debounced so that a burst
// of notifications inside window collapses into one wakeup (spec §9:
// "coalesce repeat triggers arriving within a short debounce window into a
// single run"). It also signals on listener reconnects, since a dropped
// connection may have swallowed a notification, and after 60s without any
// other event.
func Listen(ctx context.Context, dsn string, window time.Duration, log *logging.Logger) (<-chan struct{}, func() error, error) {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warnf("listener event %d: %v", ev, err)
		}
	}
	listener := pq.NewListener(dsn, 5*time.Second, time.Minute, reportProblem)
	if err := listener.Listen("calc_queue"); err != nil {
		listener.Close()
		return nil, nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		var timer *time.Timer
		var timerC <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		signalSoon := func() {
			if timer == nil {
				timer = time.NewTimer(window)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(window)
			}
		}
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener.Notify:
				if n == nil {
					// Connection dropped and was reestablished; assume a
					// notification may have been missed.
					signalSoon()
					continue
				}
				signalSoon()
			case <-timerC:
				timerC = nil
				select {
				case out <- struct{}{}:
				default:
				}
			case <-time.After(60 * time.Second):
				// Periodic tick as a backstop in case LISTEN/NOTIFY drops a
				// wakeup entirely (spec §9).
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, listener.Close, nil
}
