package qb

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultSyncCommand is the external command template used to mirror a
// RemoteJobspace's local cache with its remote prefix. %s is substituted with source then destination.
const DefaultSyncCommand = "aws s3 sync %s %s"

// RemoteJobspace is a LocalJobspace rooted at a cache directory derived from
// a remote URL, plus a Sync that shells out to mirror the cache with the
// remote prefix in both directions. On-disk structure under the
// cache is identical to LocalJobspace; Count/Punch/Subspace simply delegate.
type RemoteJobspace struct {
	*LocalJobspace
	remoteURL  string
	cachePath  string
	syncCmd    string
	runCommand func(ctx context.Context, shellCmd string) error
}

// NewRemoteJobspace returns a Jobspace whose local cache lives under
// qspaceRoot (keyed by the url-encoded remote URL) and whose Sync mirrors
// that cache with remoteURL using the default sync command.
func NewRemoteJobspace(remoteURL, worker, qspaceRoot string) *RemoteJobspace {
	cachePath := filepath.Join(qspaceRoot, url.QueryEscape(remoteURL))
	return &RemoteJobspace{
		LocalJobspace: NewLocalJobspace(cachePath, worker),
		remoteURL:     remoteURL,
		cachePath:     cachePath,
		syncCmd:       DefaultSyncCommand,
		runCommand:    runShell,
	}
}

// WithSyncCommand overrides the external sync command template. NewJobspace
// does not call it, so jobspaces opened by Make, Seed, Share and Spawn use
// DefaultSyncCommand whatever the "syncCmd" configuration key says.
func (j *RemoteJobspace) WithSyncCommand(tmpl string) *RemoteJobspace {
	j.syncCmd = tmpl
	return j
}

// Sync pulls remote state into the local cache, then pushes local state back
// out, so concurrent writers on other nodes converge eventually.
func (j *RemoteJobspace) Sync(ctx context.Context, jobID string) error {
	if err := os.MkdirAll(j.cachePath, 0o755); err != nil {
		return fmt.Errorf("qb: jobspace cache: %w", err)
	}
	pull := fmt.Sprintf(j.syncCmd, j.remoteURL, j.cachePath)
	if err := j.runCommand(ctx, pull); err != nil {
		return &TransportFailureError{Op: "jobspace sync (pull)", Addr: j.remoteURL, Err: err}
	}
	push := fmt.Sprintf(j.syncCmd, j.cachePath, j.remoteURL)
	if err := j.runCommand(ctx, push); err != nil {
		return &TransportFailureError{Op: "jobspace sync (push)", Addr: j.remoteURL, Err: err}
	}
	return nil
}

func runShell(ctx context.Context, shellCmd string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", shellCmd)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
