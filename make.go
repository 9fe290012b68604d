package qb

import "context"

// Make resolves targets into a qubit graph and drives the execution loop
// against the job identified by cfg.Parent (a fresh job-id is generated when
// Parent is empty), returning the job-id.
func Make(ctx context.Context, table *RuleTable, cfg Config, metrics *Metrics, targets ...string) (string, error) {
	space := NewJobspace(cfg.Jobspace(), cfg.Worker, cfg.QSpace)
	job, err := OpenJob(ctx, space, cfg.Parent, metrics)
	if err != nil {
		return "", err
	}

	qbdict, err := Resolve(table, targets...)
	if err != nil {
		return "", err
	}

	opts := LoopOptions{Interval: cfg.Interval, Stalled: cfg.Stalled}
	if err := RunLoop(ctx, qbdict, job, opts); err != nil {
		return job.ID, err
	}
	return job.ID, nil
}
