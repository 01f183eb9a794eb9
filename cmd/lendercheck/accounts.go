package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"genlender/shared"
	"genlender/simchain"
)

func newAccountsCmd(a *app) *cobra.Command {
	var showKeys bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Print the derived test accounts and their fixture roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := simchain.New(simchain.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer sim.Close()

			roles := accountRoles(a.cfg)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for i, acct := range sim.Accounts() {
				line := fmt.Sprintf("%d\t%s\t%s", i, acct.Address.Hex(), strings.Join(roles[i], ","))
				if showKeys {
					line += "\t" + acct.PrivateKeyHex()
				}
				fmt.Fprintln(w, line)
			}
			fmt.Fprintf(w, "-\t%s\twhale (impersonated)\n", a.cfg.WhaleAddress)
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showKeys, "show-keys", false, "also print private keys")
	return cmd
}

func accountRoles(cfg *shared.Config) map[int][]string {
	roles := make(map[int][]string)
	roles[cfg.GuardianIndex] = append(roles[cfg.GuardianIndex], "guardian")
	roles[cfg.StrategistIndex] = append(roles[cfg.StrategistIndex], "strategist")
	roles[cfg.GovIndex] = append(roles[cfg.GovIndex], "gov", "rewards")
	roles[cfg.KeeperIndex] = append(roles[cfg.KeeperIndex], "keeper")
	return roles
}
