package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qubitbuild/qb"
)

func newMakeCmd(g *globals) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "make [TARGETS...]",
		Short: "start making TARGETS from Qfile",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(g)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(g, "make")
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				cfg.MetricsAddr = metricsAddr
			}

			ctx, cancel := cmdContext()
			defer cancel()
			metrics := startMetrics(ctx, cfg)

			jobID, err := qb.Make(ctx, table, cfg, metrics, args...)
			if jobID != "" {
				fmt.Println(jobID)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics at host:port")
	return cmd
}
