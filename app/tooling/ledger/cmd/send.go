package cmd

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	sendFrom   string
	sendTo     string
	sendAmount uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Move value between addresses and mine a block holding the transfer.",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendFrom, "from", "f", "", "Address sending the value.")
	sendCmd.Flags().StringVarP(&sendTo, "to", "t", "", "Address receiving the value.")
	sendCmd.Flags().Uint64VarP(&sendAmount, "amount", "n", 0, "Value to send.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) error {
	bc, err := openChain()
	if err != nil {
		return err
	}
	defer bc.Close()

	tx, err := bc.NewTransfer(sendFrom, sendTo, sendAmount)
	if err != nil {
		return err
	}

	block, err := bc.MineBlock([]database.Transaction{tx})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Success! Block %s holds transaction %s\n", signature.Hex(block.Hash), tx.HexID())
	return nil
}
