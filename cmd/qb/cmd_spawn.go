package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qubitbuild/qb"
)

func newSpawnCmd(g *globals) *cobra.Command {
	var qpackDir string
	cmd := &cobra.Command{
		Use:   "spawn [JOBID] [QPACK]",
		Short: "launch backgrounded seed invocations across the configured nodes",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(g)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(g, "spawn")
			if err != nil {
				return err
			}
			jobID := g.parent
			if len(args) > 0 {
				jobID = args[0]
			}
			if len(args) > 1 {
				qpackDir = args[1]
			}
			if jobID == "" {
				return fmt.Errorf("qb: spawn requires a JOBID argument or -j/--parent naming the job to spawn into")
			}

			ctx, cancel := cmdContext()
			defer cancel()

			transport := qb.NewShellTransport(cfg.Shell, cfg.Verbose)
			jobID, err = qb.Spawn(ctx, table, cfg, transport, jobID, qpackDir)
			if jobID != "" {
				fmt.Println(jobID)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&qpackDir, "qpack-dir", ".", "directory holding the qubits manifest to spawn from")
	return cmd
}
