package cmd

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	mineAddress string
	mineData    string
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a block holding a coinbase that rewards an address.",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&mineAddress, "address", "a", "", "Address receiving the reward.")
	mineCmd.Flags().StringVar(&mineData, "data", "", "Memo carried by the coinbase input.")
	mineCmd.MarkFlagRequired("address")
}

func mineRun(cmd *cobra.Command, args []string) error {
	bc, err := openChain()
	if err != nil {
		return err
	}
	defer bc.Close()

	memo := mineData
	if memo == "" {
		memo = database.UniqueRewardMemo(mineAddress)
	}

	tx, err := database.NewCoinbaseTx(mineAddress, memo)
	if err != nil {
		return err
	}

	block, err := bc.MineBlock([]database.Transaction{tx})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Mined block %s with nonce %d\n", signature.Hex(block.Hash), block.Nonce)
	return nil
}
