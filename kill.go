package qb

import (
	"context"
	"fmt"
)

// DefaultSignal is the signal Kill sends when none is specified.
const DefaultSignal = "KILL"

// Kill dispatches, over the shell transport, a process-match-and-signal
// command targeting "qb seed" invocations on every configured node,
// optionally filtered by jobish.
func Kill(ctx context.Context, cfg Config, transport ShellTransport, jobish, signal string) error {
	if signal == "" {
		signal = DefaultSignal
	}
	pattern := "qb seed"
	if jobish != "" {
		pattern = fmt.Sprintf("qb seed -j %s", jobish)
	}

	orders := make([]ShellOrder, 0, len(cfg.Nodes))
	for _, node := range cfg.Nodes {
		cmd := fmt.Sprintf(`pkill -%s -f "%s"`, signal, pattern)
		orders = append(orders, ShellOrder{Addr: node.Address, Command: cmd})
	}
	return DispatchShell(ctx, transport, cfg.FanOut, orders)
}
