package qb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// ShellTransport runs a command on a remote node. The exact executable is
// configurable (the "shell" key); this package only depends on the
// interface, so tests substitute a fake that records invocations instead of
// touching the network.
type ShellTransport interface {
	Run(ctx context.Context, addr, command string) error
}

// CopyTransport copies a local directory to a remote node.
type CopyTransport interface {
	Copy(ctx context.Context, srcDir, addr, dstDir string) error
}

// execShellTransport shells out to cfg.Shell (default "ssh"): build an argv,
// stream output, surface a non-zero exit as an error.
type execShellTransport struct {
	shell   string
	verbose bool
}

// NewShellTransport returns a ShellTransport that runs "<shell> <addr>
// <command>" via os/exec (e.g. "ssh node1 'cd /mnt/qjob-…; …'").
func NewShellTransport(shell string, verbose bool) ShellTransport {
	return &execShellTransport{shell: shell, verbose: verbose}
}

func (t *execShellTransport) Run(ctx context.Context, addr, command string) error {
	if t.verbose {
		slog.Info("dispatching", "addr", addr, "command", command)
	}
	cmd := exec.CommandContext(ctx, t.shell, addr, command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &TransportFailureError{Op: "shell", Addr: addr, Err: err}
	}
	return nil
}

// execCopyTransport shells out to cfg.Copy (default "rsync -az").
type execCopyTransport struct {
	copyCmd string
	verbose bool
}

// NewCopyTransport returns a CopyTransport that runs "<copy-cmd> <srcDir>/
// <addr>:<dstDir>" via os/exec.
func NewCopyTransport(copyCmd string, verbose bool) CopyTransport {
	return &execCopyTransport{copyCmd: copyCmd, verbose: verbose}
}

func (t *execCopyTransport) Copy(ctx context.Context, srcDir, addr, dstDir string) error {
	dst := fmt.Sprintf("%s:%s", addr, dstDir)
	if t.verbose {
		slog.Info("copying", "src", srcDir, "dst", dst)
	}
	args := append(splitFields(t.copyCmd), srcDir+"/", dst)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &TransportFailureError{Op: "copy", Addr: addr, Err: err}
	}
	return nil
}

func splitFields(s string) []string {
	var fields []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

// ShellOrder is one (address, command) pair to dispatch.
type ShellOrder struct {
	Addr    string
	Command string
}

// DispatchShell runs every order concurrently, bounded to fanOut in flight
// at once via errgroup.Group.SetLimit. A single order's TransportFailureError
// is surfaced; other orders still run to completion.
func DispatchShell(ctx context.Context, transport ShellTransport, fanOut int, orders []ShellOrder) error {
	var g errgroup.Group
	if fanOut > 0 {
		g.SetLimit(fanOut)
	}
	for _, order := range orders {
		order := order
		g.Go(func() error {
			return transport.Run(ctx, order.Addr, order.Command)
		})
	}
	return g.Wait()
}

// CopyOrder is one (destination address, destination dir) pair to copy to.
type CopyOrder struct {
	Addr string
	Dir  string
}

// DispatchCopy copies srcDir to every destination concurrently, bounded to
// fanOut in flight at once.
func DispatchCopy(ctx context.Context, transport CopyTransport, fanOut int, srcDir string, dsts []CopyOrder) error {
	g, ctx := errgroup.WithContext(ctx)
	if fanOut > 0 {
		g.SetLimit(fanOut)
	}
	for _, dst := range dsts {
		dst := dst
		g.Go(func() error {
			return transport.Copy(ctx, srcDir, dst.Addr, dst.Dir)
		})
	}
	return g.Wait()
}
