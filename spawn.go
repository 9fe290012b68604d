package qb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type slot struct {
	address string
	targets []string
}

// Spawn reads the qubits manifest from qpackDir, partitions root targets
// (qubits with no dependencies) round-robin across node slots, and launches
// one backgrounded "qb seed" invocation per non-empty slot via the shell
// transport, grouped per address. It returns jobID unchanged.
func Spawn(ctx context.Context, table *RuleTable, cfg Config, transport ShellTransport, jobID, qpackDir string) (string, error) {
	manifestPath := filepath.Join(qpackDir, cfg.QubitsFile)
	f, err := os.Open(manifestPath)
	if err != nil {
		return "", fmt.Errorf("qb: opening manifest %s: %w", manifestPath, err)
	}
	defer f.Close()

	qbdict, err := ParseManifest(f, table)
	if err != nil {
		return "", err
	}

	slots := buildSlots(cfg.Nodes)
	if len(slots) == 0 {
		return "", fmt.Errorf("qb: no nodes configured")
	}

	n := 0
	for _, q := range qbdict.Qubits() {
		if len(q.Deps) != 0 {
			continue // only root targets are explicitly scheduled
		}
		slots[n%len(slots)].targets = append(slots[n%len(slots)].targets, q.Target)
		n++
	}

	space := NewJobspace(cfg.Jobspace(), cfg.Worker, cfg.QSpace)
	job, err := OpenJob(ctx, space, jobID, nil)
	if err != nil {
		return "", err
	}

	flags := seedFlags(cfg, job.ID)
	orders := groupSlotsIntoOrders(slots, cfg, job.ID, flags)

	if err := DispatchShell(ctx, transport, cfg.FanOut, orders); err != nil {
		return job.ID, err
	}
	return job.ID, nil
}

func buildSlots(nodes []NodeSpec) []slot {
	var slots []slot
	for _, node := range nodes {
		for i := 0; i < node.MaxConcurrency; i++ {
			slots = append(slots, slot{address: node.Address})
		}
	}
	return slots
}

func seedFlags(cfg Config, jobID string) string {
	flags := fmt.Sprintf("-j %s", jobID)
	if cfg.Profile != "" {
		flags += fmt.Sprintf(" -p %s", cfg.Profile)
	}
	if cfg.Verbose {
		flags += " -v"
	}
	return flags
}

// plant builds the backgrounded "qb seed" invocation for one slot's targets.
func plant(flags, spawnLog string, targets []string) string {
	return fmt.Sprintf("(nohup qb seed %s %s >> %s 2>&1 &)", flags, strings.Join(targets, " "), spawnLog)
}

// groupSlotsIntoOrders groups contiguous same-address slots and builds one ShellOrder per
// address with every non-empty bucket's seed invocation chained by ';'.
func groupSlotsIntoOrders(slots []slot, cfg Config, jobID, flags string) []ShellOrder {
	var orders []ShellOrder
	i := 0
	for i < len(slots) {
		addr := slots[i].address
		var plants []string
		j := i
		for j < len(slots) && slots[j].address == addr {
			if len(slots[j].targets) > 0 {
				plants = append(plants, plant(flags, cfg.SpawnLog, slots[j].targets))
			}
			j++
		}
		if len(plants) > 0 {
			cmd := fmt.Sprintf("cd %s; %s; echo ok", cfg.JobDir(jobID), strings.Join(plants, "; "))
			orders = append(orders, ShellOrder{Addr: addr, Command: cmd})
		}
		i = j
	}
	return orders
}
