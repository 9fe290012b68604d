package qb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeShellTransport struct {
	mu       sync.Mutex
	runs     []ShellOrder
	inFlight int32
	maxSeen  int32
	fail     map[string]error
}

func (f *fakeShellTransport) Run(ctx context.Context, addr, command string) error {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if cur <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, cur) {
			break
		}
	}

	f.mu.Lock()
	f.runs = append(f.runs, ShellOrder{Addr: addr, Command: command})
	f.mu.Unlock()

	if f.fail != nil {
		if err, ok := f.fail[addr]; ok {
			return err
		}
	}
	return nil
}

type fakeCopyTransport struct {
	mu   sync.Mutex
	runs []CopyOrder
}

func (f *fakeCopyTransport) Copy(ctx context.Context, srcDir, addr, dstDir string) error {
	f.mu.Lock()
	f.runs = append(f.runs, CopyOrder{Addr: addr, Dir: dstDir})
	f.mu.Unlock()
	return nil
}

func TestDispatchShellRunsEveryOrder(t *testing.T) {
	transport := &fakeShellTransport{}
	orders := []ShellOrder{
		{Addr: "node1", Command: "echo a"},
		{Addr: "node2", Command: "echo b"},
		{Addr: "node3", Command: "echo c"},
	}
	require.NoError(t, DispatchShell(context.Background(), transport, 16, orders))
	require.Len(t, transport.runs, 3)
}

func TestDispatchShellBoundsFanOut(t *testing.T) {
	transport := &fakeShellTransport{}
	orders := make([]ShellOrder, 20)
	for i := range orders {
		orders[i] = ShellOrder{Addr: "node", Command: "noop"}
	}
	require.NoError(t, DispatchShell(context.Background(), transport, 4, orders))
	require.LessOrEqual(t, int(transport.maxSeen), 4)
}

func TestDispatchShellSurfacesFailure(t *testing.T) {
	boom := errors.New("connection refused")
	transport := &fakeShellTransport{fail: map[string]error{"bad-node": boom}}
	orders := []ShellOrder{
		{Addr: "good-node", Command: "echo ok"},
		{Addr: "bad-node", Command: "echo ok"},
	}
	err := DispatchShell(context.Background(), transport, 16, orders)
	require.ErrorIs(t, err, boom)
}

func TestDispatchCopyRunsEveryDestination(t *testing.T) {
	transport := &fakeCopyTransport{}
	dsts := []CopyOrder{
		{Addr: "node1", Dir: "/mnt/qjob-x"},
		{Addr: "node2", Dir: "/mnt/qjob-x"},
	}
	require.NoError(t, DispatchCopy(context.Background(), transport, 16, "/tmp/src", dsts))
	require.Len(t, transport.runs, 2)
}

func TestSplitFields(t *testing.T) {
	require.Equal(t, []string{"rsync", "-az"}, splitFields("rsync -az"))
	require.Equal(t, []string{"ssh"}, splitFields("ssh"))
	require.Equal(t, []string{"a", "b", "c"}, splitFields("  a  b   c  "))
}
