package qb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Seed reads the qubits manifest already present in the working directory
// (placed there by Share) and runs the execution loop over a qubit sequence
// that starts with requestedTargets and then iterates every other qubit in
// the manifest. This is what lets a worker opportunistically
// pick up any other ready qubit once its assigned roots are exhausted — the
// manifest is the whole graph, and the ledger-based claim protocol in
// RunLoop prevents duplicate execution across workers doing this
// simultaneously.
func Seed(ctx context.Context, table *RuleTable, cfg Config, metrics *Metrics, jobID string, requestedTargets ...string) (string, error) {
	f, err := os.Open(filepath.Join(".", cfg.QubitsFile))
	if err != nil {
		return "", fmt.Errorf("qb: opening manifest: %w", err)
	}
	defer f.Close()

	manifest, err := ParseManifest(f, table)
	if err != nil {
		return "", err
	}

	ordered := NewQubitMap()
	for _, t := range requestedTargets {
		if q, ok := manifest.Get(t); ok {
			ordered.Set(t, q)
		}
	}
	for _, t := range manifest.Keys() {
		if !ordered.Has(t) {
			q, _ := manifest.Get(t)
			ordered.Set(t, q)
		}
	}

	space := NewJobspace(cfg.Jobspace(), cfg.Worker, cfg.QSpace)
	job, err := OpenJob(ctx, space, jobID, metrics)
	if err != nil {
		return "", err
	}

	opts := LoopOptions{Interval: cfg.Interval, Stalled: cfg.Stalled}
	if err := RunLoop(ctx, ordered, job, opts); err != nil {
		return job.ID, err
	}
	return job.ID, nil
}
