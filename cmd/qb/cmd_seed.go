package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qubitbuild/qb"
)

func newSeedCmd(g *globals) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "seed [TARGETS...]",
		Short: "run the execution loop over the local qubits manifest, starting with TARGETS",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(g)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(g, "seed")
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				cfg.MetricsAddr = metricsAddr
			}
			if g.parent == "" {
				return fmt.Errorf("qb: seed requires -j/--parent naming the job to join")
			}

			ctx, cancel := cmdContext()
			defer cancel()
			metrics := startMetrics(ctx, cfg)

			jobID, err := qb.Seed(ctx, table, cfg, metrics, g.parent, args...)
			if jobID != "" {
				fmt.Println(jobID)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics at host:port")
	return cmd
}
