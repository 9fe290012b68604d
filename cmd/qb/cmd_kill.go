package main

import (
	"github.com/spf13/cobra"

	"github.com/qubitbuild/qb"
)

func newKillCmd(g *globals) *cobra.Command {
	var signal string
	cmd := &cobra.Command{
		Use:   "kill [JOBISH] [SIGNAL]",
		Short: "signal seed processes (only JOBISH's, if given) on every configured node",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g, "kill")
			if err != nil {
				return err
			}
			jobish := ""
			if len(args) > 0 {
				jobish = args[0]
			}
			if len(args) > 1 {
				signal = args[1]
			}

			ctx, cancel := cmdContext()
			defer cancel()

			transport := qb.NewShellTransport(cfg.Shell, cfg.Verbose)
			return qb.Kill(ctx, cfg, transport, jobish, signal)
		},
	}
	cmd.Flags().StringVar(&signal, "signal", qb.DefaultSignal, "signal to send")
	return cmd
}
