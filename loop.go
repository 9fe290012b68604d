package qb

import (
	"context"
	"log/slog"
	"time"
)

// LoopOptions are the configuration parameters of the execution loop.
type LoopOptions struct {
	// Interval is the poll delay between cycles, default 2s.
	Interval time.Duration
	// Stalled is the number of consecutive idle cycles after which a
	// started-but-not-finished target becomes eligible for re-execution,
	// default 100.
	Stalled int
}

// DefaultLoopOptions returns the baseline defaults (interval=2s, stalled=100).
func DefaultLoopOptions() LoopOptions {
	return LoopOptions{Interval: 2 * time.Second, Stalled: 100}
}

// RunLoop drives qubits to completion against job, classifying each qubit's
// status every cycle and executing ready, unclaimed qubits. It
// returns when every target has reached up-to-date, or when ctx is
// cancelled.
//
// Anti-duplication: a worker claims a ready qubit by observing in_count==0
// and immediately punching in; this races across workers but is sufficient
// in steady state, since the next cycle's Count will see in_count>0 and
// defer. After Stalled idle cycles,
// a started-but-unfinished qubit is presumed abandoned and re-claimable.
//
// Recipe failures are not fatal to the loop: the qubit still receives an Out
// punch (so it doesn't look perpetually in-progress), and the failure is
// logged. This is a deliberate simplification: freshness is out-count alone,
// so a failing recipe that punches out still reads as complete.
func RunLoop(ctx context.Context, qbdict *QubitMap, job *Job, opts LoopOptions) error {
	qubits := qbdict.Qubits()
	targets := make(map[string]struct{}, len(qubits))
	for _, q := range qubits {
		targets[q.Target] = struct{}{}
	}

	idle := 0
	for len(targets) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		busy := false
		if idle > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Interval):
			}
		}

		if err := job.Sync(ctx); err != nil {
			return err
		}

		for _, qubit := range qubits {
			if _, pending := targets[qubit.Target]; !pending {
				continue
			}

			status, in, _, err := job.Status(ctx, qubit.Target, qbdict)
			if err != nil {
				return err
			}

			switch status {
			case UpToDate:
				delete(targets, qubit.Target)
			case Waiting:
				// another dependency still pending; nothing to do this cycle
			case Ready:
				if in == 0 || idle > opts.Stalled {
					if err := runQubit(ctx, job, qubit); err != nil {
						slog.Warn("recipe failed", "target", qubit.Target, "err", err)
					}
					busy = true
				}
				// else: in>0 and not stalled — another worker owns this claim
			}
		}

		if busy {
			idle = 0
		} else {
			idle++
		}
		job.Metrics.SetIdle(idle)
	}
	return nil
}

// runQubit claims target by punching in, runs its recipe, and punches out
// regardless of the recipe's outcome.
func runQubit(ctx context.Context, job *Job, qubit Qubit) error {
	if err := job.Punch(ctx, qubit.Target, In); err != nil {
		return err
	}
	job.Metrics.ObserveClaim()

	recipeErr := qubit.Recipe(qubit.Target, qubit.Deps)

	if err := job.Punch(ctx, qubit.Target, Out); err != nil {
		if recipeErr != nil {
			return recipeErr
		}
		return err
	}
	return recipeErr
}
