package qb

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nightlyone/lockfile"
)

// punchMu serialises appends within this process: the lockfile only excludes
// other processes, since it lets a caller with the same pid take it again.
var punchMu sync.Mutex

// LocalJobspace is the ledger rooted at a plain filesystem directory.
// Punches append to <root>/<job-id>/<urlencoded-worker-id>; Sync is a
// no-op. Appends are serialised within this process by a mutex and across
// processes by an advisory lockfile, so lines never interleave; readers skip
// any line they can't parse.
type LocalJobspace struct {
	root   string
	worker string
}

// NewLocalJobspace returns a Jobspace backed by the directory at root.
func NewLocalJobspace(root, worker string) *LocalJobspace {
	return &LocalJobspace{root: root, worker: worker}
}

func (j *LocalJobspace) subspacePath(jobID string) string {
	return filepath.Join(j.root, jobID)
}

func (j *LocalJobspace) workerFile(jobID string) string {
	return filepath.Join(j.subspacePath(jobID), url.QueryEscape(j.worker))
}

// Subspace idempotently creates <root>/<job-id>.
func (j *LocalJobspace) Subspace(_ context.Context, jobID string) error {
	return os.MkdirAll(j.subspacePath(jobID), 0o755)
}

// Punch appends one line to the caller's worker file, holding an advisory
// lock for the duration of the append.
func (j *LocalJobspace) Punch(_ context.Context, jobID, target string, dir Direction) error {
	if err := os.MkdirAll(j.subspacePath(jobID), 0o755); err != nil {
		return fmt.Errorf("qb: ledger subspace: %w", err)
	}
	path := j.workerFile(jobID)

	punchMu.Lock()
	defer punchMu.Unlock()

	// lockfile requires an absolute path; the root may be relative (".qspace").
	lockPath, err := filepath.Abs(path + ".lock")
	if err != nil {
		return fmt.Errorf("qb: ledger lock: %w", err)
	}
	lock, err := lockfile.New(lockPath)
	if err != nil {
		return fmt.Errorf("qb: ledger lock: %w", err)
	}
	for {
		err = lock.TryLock()
		if err == nil {
			break
		}
		if err != lockfile.ErrBusy {
			return fmt.Errorf("qb: ledger lock: %w", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("qb: ledger append: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%d\t%s\t%d\n", time.Now().Unix(), target, dir)
	_, err = f.WriteString(line)
	return err
}

// Count scans every worker file under the job subspace and tallies in/out
// punches for target. Malformed lines are skipped.
func (j *LocalJobspace) Count(_ context.Context, jobID, target string) (in, out int, err error) {
	subdir := j.subspacePath(jobID)
	entries, err := os.ReadDir(subdir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("qb: ledger scan: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".lock") {
			continue
		}
		i, o := countFile(filepath.Join(subdir, entry.Name()), target)
		in += i
		out += o
	}
	return in, out, nil
}

func countFile(path, target string) (in, out int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 3 {
			continue // malformed/torn line, tolerated
		}
		if fields[1] != target {
			continue
		}
		dir, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		if Direction(dir) == In {
			in++
		} else {
			out++
		}
	}
	return in, out
}

// Sync is a no-op for the local-filesystem variant.
func (j *LocalJobspace) Sync(context.Context, string) error {
	return nil
}
