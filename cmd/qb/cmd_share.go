package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qubitbuild/qb"
)

func newShareCmd(g *globals) *cobra.Command {
	var qpackDir string
	cmd := &cobra.Command{
		Use:   "share [QPACK]",
		Short: "copy a qpack directory out to every configured node",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g, "share")
			if err != nil {
				return err
			}
			if len(args) > 0 {
				qpackDir = args[0]
			}

			ctx, cancel := cmdContext()
			defer cancel()

			transport := qb.NewCopyTransport(cfg.Copy, cfg.Verbose)
			jobID, err := qb.Share(ctx, cfg, transport, qpackDir)
			if jobID != "" {
				fmt.Println(jobID)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&qpackDir, "qpack-dir", ".", "qpack directory to share")
	return cmd
}
