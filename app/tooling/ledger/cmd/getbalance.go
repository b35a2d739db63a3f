package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var balanceAddress string

var getBalanceCmd = &cobra.Command{
	Use:   "getbalance",
	Short: "Print the spendable balance of an address.",
	RunE:  getBalanceRun,
}

func init() {
	rootCmd.AddCommand(getBalanceCmd)
	getBalanceCmd.Flags().StringVarP(&balanceAddress, "address", "a", "", "Address to report.")
	getBalanceCmd.MarkFlagRequired("address")
}

func getBalanceRun(cmd *cobra.Command, args []string) error {
	bc, err := openChain()
	if err != nil {
		return err
	}
	defer bc.Close()

	balance, err := bc.Balance(balanceAddress)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Balance of '%s': %d\n", balanceAddress, balance)
	return nil
}
