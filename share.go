package qb

import "context"

// Share copies the QPACK directory at qpackDir to every configured node's
// job directory in parallel, bounded by cfg.FanOut, and returns the job-id
//.
func Share(ctx context.Context, cfg Config, transport CopyTransport, qpackDir string) (string, error) {
	space := NewJobspace(cfg.Jobspace(), cfg.Worker, cfg.QSpace)
	job, err := OpenJob(ctx, space, cfg.Parent, nil)
	if err != nil {
		return "", err
	}

	dsts := make([]CopyOrder, 0, len(cfg.Nodes))
	for _, node := range cfg.Nodes {
		dsts = append(dsts, CopyOrder{Addr: node.Address, Dir: cfg.JobDir(job.ID)})
	}

	if err := DispatchCopy(ctx, transport, cfg.FanOut, qpackDir, dsts); err != nil {
		return job.ID, err
	}
	return job.ID, nil
}
