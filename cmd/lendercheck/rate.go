package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"genlender/internal/ethrpc"
	"genlender/rate"
	"genlender/shared"
)

func newRateCmd(a *app) *cobra.Command {
	var (
		rpcURL   string
		plugin   string
		position string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Check the reward rate of a deployed lender plugin over JSON-RPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rpcURL == "" {
				rpcURL = os.Getenv(shared.EnvRPCURL)
			}
			if rpcURL == "" {
				return fmt.Errorf("--rpc-url or %s required", shared.EnvRPCURL)
			}
			if err := shared.ValidateAddress("plugin", plugin); err != nil {
				return err
			}
			if position == "" {
				position = a.cfg.ProbePosition
			}
			probe, err := shared.ParseTokenAmount(position, a.cfg.Decimals)
			if err != nil {
				return fmt.Errorf("position: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			p, err := ethrpc.Dial(ctx, rpcURL, common.HexToAddress(plugin), ethrpc.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer p.Close()

			estimator, err := rate.NewEstimator(p,
				rate.WithParams(rate.ParamsFromConfig(a.cfg)),
				rate.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}

			report, checkErr := estimator.CheckDiminishingReturns(ctx, probe)
			if report != nil {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "plugin\t%s\n", p.Address().Hex())
				fmt.Fprintf(w, "position\t%s\n", shared.FormatTokenAmount(probe, a.cfg.Decimals))
				printReport(w, report)
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return checkErr
		},
	}

	cmd.Flags().StringVar(&rpcURL, "rpc-url", "", "JSON-RPC endpoint (default $"+shared.EnvRPCURL+")")
	cmd.Flags().StringVar(&plugin, "plugin", "", "lender plugin address")
	cmd.Flags().StringVar(&position, "position", "", "probe position in whole want tokens (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall RPC timeout")
	_ = cmd.MarkFlagRequired("plugin")
	return cmd
}
