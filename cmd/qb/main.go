// Command qb is the distributed qubit build orchestrator's CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qubitbuild/qb"
	"github.com/qubitbuild/qb/internal/qfile"
)

type globals struct {
	qfilePath string
	parent    string
	profile   string
	verbose   bool
	config    string
}

func main() {
	g := &globals{}

	root := &cobra.Command{
		Use:           "qb",
		Short:         "qb orchestrates rule-driven builds across a cluster of worker nodes",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&g.qfilePath, "Qfile", "f", "Qfile", "the path of the Qfile")
	root.PersistentFlags().StringVarP(&g.parent, "parent", "j", "", "the parent job")
	root.PersistentFlags().StringVarP(&g.profile, "profile", "p", "", "the profile of the config")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVarP(&g.config, "config", "c", ".qbconfig.yaml", "path to the profile overlay config file")

	root.AddCommand(
		newConfCmd(g),
		newQubitsCmd(g),
		newMakeCmd(g),
		newPackCmd(g),
		newSeedCmd(g),
		newSpawnCmd(g),
		newShareCmd(g),
		newKillCmd(g),
		newRunCmd(g),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "qb: %s\n", err)
		os.Exit(1)
	}
}

// loadConfig builds the effective Config for this invocation: defaults,
// overlaid by the selected profile, overlaid by the global flags.
// "run" defaults profile to "dist" when the user didn't pass -p.
func loadConfig(g *globals, cmdName string) (qb.Config, error) {
	profile := g.profile
	if profile == "" && cmdName == "run" {
		profile = "dist"
	}
	cfg, err := qb.LoadConfig(g.config, profile)
	if err != nil {
		return qb.Config{}, err
	}
	cfg.Parent = g.parent
	cfg.Verbose = g.verbose
	return cfg, nil
}

func loadTable(g *globals) (*qb.RuleTable, error) {
	return qfile.Load(g.qfilePath)
}

// cmdContext returns a context cancelled on SIGINT/SIGTERM, so a long-running
// loop (make/seed/run) stops between cycles or during its poll sleep, and
// in-flight Sync and transport subprocesses are killed. A running recipe
// does not observe the context and runs to completion.
func cmdContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// startMetrics starts the optional Prometheus endpoint when cfg.MetricsAddr
// is set, returning a Metrics handle to thread into the loop either way (nil
// addr means metrics are still collected in-process, just never served).
func startMetrics(ctx context.Context, cfg qb.Config) *qb.Metrics {
	metrics := qb.NewMetrics()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				fmt.Fprintf(os.Stderr, "qb: metrics server: %s\n", err)
			}
		}()
	}
	return metrics
}
