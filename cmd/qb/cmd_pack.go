package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qubitbuild/qb"
)

func newPackCmd(g *globals) *cobra.Command {
	var srcDir string
	cmd := &cobra.Command{
		Use:   "pack [TARGETS...]",
		Short: "assemble a qpack directory ready to distribute",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(g)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(g, "pack")
			if err != nil {
				return err
			}
			qpackDir, err := qb.Pack(table, cfg, srcDir, cfg.Verbose, args...)
			if qpackDir != "" {
				fmt.Println(qpackDir)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&srcDir, "src", ".", "source directory to pack")
	return cmd
}
