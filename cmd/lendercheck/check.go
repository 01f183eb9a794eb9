package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"genlender/fixture"
	"genlender/rate"
	"genlender/simchain"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Build the fixtures on a simulated fork and check the plugin reward rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fork, err := simchain.NewFork(a.cfg, simchain.WithLogger(a.logger))
			if err != nil {
				return fmt.Errorf("create fork: %w", err)
			}
			defer fork.Close()

			f, err := fixture.Setup(cmd.Context(), fork, a.cfg,
				fixture.WithLogger(a.logger),
				fixture.WithMetrics(rate.NewMetrics(prometheus.NewRegistry())),
			)
			if err != nil {
				return err
			}
			return printFixtures(cmd.OutOrStdout(), f)
		},
	}
}

func printFixtures(out io.Writer, f *fixture.Fixtures) error {
	s := f.Strategy
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "session\t%s\n", f.SessionID)
	fmt.Fprintf(w, "vault\t%s\n", f.Vault.Address().Hex())
	fmt.Fprintf(w, "strategy\t%s\n", s.Strategy.Address().Hex())
	fmt.Fprintf(w, "plugin\t%s\n", s.Plugin.Address().Hex())
	if f.LiveStrategy != nil {
		fmt.Fprintf(w, "live strategy\t%s\n", f.LiveStrategy.Address().Hex())
	}
	printReport(w, s.Report)
	fmt.Fprintf(w, "lending rate\t%s%%\n", s.LendingRate.Percent().StringFixed(4))
	return w.Flush()
}

func printReport(w io.Writer, r *rate.Report) {
	fmt.Fprintf(w, "reward rate\t%s%%\n", r.Baseline.Percent().StringFixed(4))
	fmt.Fprintf(w, "reward rate after deposit\t%s%%\n", r.Projected.Percent().StringFixed(4))
	fmt.Fprintf(w, "drop\t%s%%\n", r.Drop().Shift(2).StringFixed(4))
}
