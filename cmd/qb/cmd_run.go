package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qubitbuild/qb"
)

func newRunCmd(g *globals) *cobra.Command {
	var srcDir string
	cmd := &cobra.Command{
		Use:   "run [TARGETS...]",
		Short: "pack, share, and spawn TARGETS across the cluster in one step",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(g)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(g, "run")
			if err != nil {
				return err
			}

			ctx, cancel := cmdContext()
			defer cancel()

			shellT := qb.NewShellTransport(cfg.Shell, cfg.Verbose)
			copyT := qb.NewCopyTransport(cfg.Copy, cfg.Verbose)

			jobID, err := qb.Run(ctx, table, cfg, shellT, copyT, srcDir, args...)
			if jobID != "" {
				fmt.Println(jobID)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&srcDir, "src", ".", "source directory to pack")
	return cmd
}
