package qb

import (
	"context"
	"strings"
)

// Direction marks whether a punch records recipe entry or exit.
type Direction int

const (
	// Out marks a recipe exit (direction-int 0 in the ledger format).
	Out Direction = 0
	// In marks a recipe entry (direction-int 1 in the ledger format).
	In Direction = 1
)

// Jobspace is the pluggable ledger contract: subspace creation,
// atomic punch append, per-target in/out tallying, and sync to a durable
// backing store.
type Jobspace interface {
	// Subspace idempotently ensures the per-job area exists.
	Subspace(ctx context.Context, jobID string) error
	// Punch atomically appends one punch to the caller's worker file.
	Punch(ctx context.Context, jobID, target string, dir Direction) error
	// Count scans every worker file in the job subspace and returns the
	// number of in and out punches observed for target.
	Count(ctx context.Context, jobID, target string) (in, out int, err error)
	// Sync flushes local ledger state to the durable backing store. A no-op
	// for the local-filesystem variant.
	Sync(ctx context.Context, jobID string) error
}

// NewJobspace dispatches on url's scheme. A "s3://" URL selects the
// remote object-store-backed variant; anything else is treated as a local
// directory path.
func NewJobspace(url, worker, qspaceRoot string) Jobspace {
	if strings.HasPrefix(url, "s3://") {
		return NewRemoteJobspace(url, worker, qspaceRoot)
	}
	return NewLocalJobspace(url, worker)
}
