package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aquasecurity/table"
	"github.com/spf13/cobra"
)

func newConfCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "conf",
		Short: "print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g, "conf")
			if err != nil {
				return err
			}
			t := table.New(os.Stdout)
			t.SetHeaders("key", "value")

			nodes := make([]string, len(cfg.Nodes))
			for i, n := range cfg.Nodes {
				nodes[i] = fmt.Sprintf("%s x%d", n.Address, n.MaxConcurrency)
			}

			t.AddRow("parent", cfg.Parent)
			t.AddRow("profile", cfg.Profile)
			t.AddRow("qpack", cfg.QPack)
			t.AddRow("qubits", cfg.QubitsFile)
			t.AddRow("qspace", cfg.QSpace)
			t.AddRow("interval", cfg.Interval.String())
			t.AddRow("stalled", fmt.Sprint(cfg.Stalled))
			t.AddRow("jobroot", cfg.JobRoot)
			t.AddRow("jobprefix", cfg.JobPrefix)
			t.AddRow("nodes", strings.Join(nodes, ", "))
			t.AddRow("worker", cfg.Worker)
			t.AddRow("spawnlog", cfg.SpawnLog)
			t.AddRow("ignore", strings.Join(cfg.Ignore, ", "))
			t.AddRow("jobspace", cfg.Jobspace())
			t.AddRow("fanout", fmt.Sprint(cfg.FanOut))
			t.AddRow("shell", cfg.Shell)
			t.AddRow("copy", cfg.Copy)
			t.AddRow("syncCmd", cfg.SyncCmd)
			t.AddRow("metricsAddr", cfg.MetricsAddr)
			t.Render()
			return nil
		},
	}
}
