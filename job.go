package qb

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Status is a qubit's readiness classification within a job.
type Status string

const (
	UpToDate Status = "up-to-date"
	Ready    Status = "ready"
	Waiting  Status = "waiting"
)

// Job pairs a job-id with the jobspace it is coordinated through.
type Job struct {
	ID      string
	Space   Jobspace
	Metrics *Metrics // optional; nil disables instrumentation
}

// NewJobID generates a 128-bit random id, used as a job-id when one is
// created without an explicit parent. The dashes are stripped so
// a job-id is a single filesystem- and URL-safe token, matching the bare hex
// form the ledger and job-directory naming expect.
func NewJobID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("qb: generating job id: %w", err)
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// OpenJob ensures the job's subspace exists and returns a handle. If id is
// empty, a fresh random job-id is generated; otherwise the given id (e.g.
// from --parent) is inherited.
func OpenJob(ctx context.Context, space Jobspace, id string, metrics *Metrics) (*Job, error) {
	if id == "" {
		generated, err := NewJobID()
		if err != nil {
			return nil, err
		}
		id = generated
	}
	if err := space.Subspace(ctx, id); err != nil {
		return nil, fmt.Errorf("qb: opening job %s: %w", id, err)
	}
	return &Job{ID: id, Space: space, Metrics: metrics}, nil
}

// Sync flushes the underlying jobspace.
func (j *Job) Sync(ctx context.Context) error {
	return j.Space.Sync(ctx, j.ID)
}

// Punch appends a punch for target and records it in metrics, if enabled.
func (j *Job) Punch(ctx context.Context, target string, dir Direction) error {
	if err := j.Space.Punch(ctx, j.ID, target, dir); err != nil {
		return err
	}
	if j.Metrics != nil {
		j.Metrics.ObservePunch(dir)
	}
	return nil
}

// Count returns the in/out punch tally for target.
func (j *Job) Count(ctx context.Context, target string) (in, out int, err error) {
	return j.Space.Count(ctx, j.ID, target)
}

// Status computes a qubit's status:
//   - out_count > 0                      => up-to-date
//   - every dependency is up-to-date      => ready
//   - otherwise                           => waiting
//
// A dependency that is absent from qbdict (dropped as a circular-dependency
// branch) is treated as permanently not up-to-date, so the
// dependent qubit stays "waiting" forever rather than erroring.
func (j *Job) Status(ctx context.Context, target string, qbdict *QubitMap) (Status, int, int, error) {
	in, out, err := j.Count(ctx, target)
	if err != nil {
		return "", 0, 0, err
	}
	if out > 0 {
		return UpToDate, in, out, nil
	}

	qubit, ok := qbdict.Get(target)
	if !ok {
		return Waiting, in, out, nil
	}
	for _, dep := range qubit.Deps {
		depStat, _, _, err := j.statusOf(ctx, dep, qbdict)
		if err != nil {
			return "", 0, 0, err
		}
		if depStat != UpToDate {
			return Waiting, in, out, nil
		}
	}
	return Ready, in, out, nil
}

// statusOf is Status preceded by a presence check, used for recursive
// dependency checks: a dependency missing from qbdict is Waiting whatever
// its ledger counts say.
func (j *Job) statusOf(ctx context.Context, target string, qbdict *QubitMap) (Status, int, int, error) {
	if !qbdict.Has(target) {
		return Waiting, 0, 0, nil
	}
	return j.Status(ctx, target, qbdict)
}
