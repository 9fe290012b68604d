package qb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKillBroadcastsToAllNodes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nodes = []NodeSpec{{Address: "node1"}, {Address: "node2"}}
	transport := &fakeShellTransport{}

	require.NoError(t, Kill(context.Background(), cfg, transport, "", ""))
	require.Len(t, transport.runs, 2)
	for _, run := range transport.runs {
		require.Contains(t, run.Command, "pkill -KILL")
		require.Contains(t, run.Command, `"qb seed"`)
	}
}

func TestKillFiltersByJobID(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nodes = []NodeSpec{{Address: "node1"}}
	transport := &fakeShellTransport{}

	require.NoError(t, Kill(context.Background(), cfg, transport, "job42", "TERM"))
	require.Contains(t, transport.runs[0].Command, "pkill -TERM")
	require.Contains(t, transport.runs[0].Command, `"qb seed -j job42"`)
}
