package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qubitbuild/qb"
)

func newQubitsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "qubits [TARGETS...]",
		Short: "print all the qubits for TARGETS",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(g)
			if err != nil {
				return err
			}
			qbdict, err := qb.Resolve(table, args...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(os.Stdout, qbdict.Dump())
			return err
		},
	}
}
