package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var printChainCmd = &cobra.Command{
	Use:   "printchain",
	Short: "Print every block from the tip back to the origin.",
	RunE:  printChainRun,
}

func init() {
	rootCmd.AddCommand(printChainCmd)
}

func printChainRun(cmd *cobra.Command, args []string) error {
	bc, err := openChain()
	if err != nil {
		return err
	}
	defer bc.Close()

	out := cmd.OutOrStdout()

	iter := bc.Iterator()
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			return err
		}
		printBlock(out, block)
	}

	return nil
}

func printBlock(w io.Writer, block database.Block) {
	fmt.Fprintf(w, "============ Block %s ============\n", signature.Hex(block.Hash))
	fmt.Fprintf(w, "Prev. block: %s\n", signature.Hex(block.PrevBlockHash))
	fmt.Fprintf(w, "Timestamp:   %s\n", time.Unix(int64(block.Timestamp), 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Nonce:       %d\n", block.Nonce)
	fmt.Fprintf(w, "PoW:         %s\n", strconv.FormatBool(block.Validate()))
	for _, tx := range block.Transactions {
		printTx(w, tx)
	}
	fmt.Fprintln(w)
}

func printTx(w io.Writer, tx database.Transaction) {
	fmt.Fprintf(w, "--- Transaction %s:\n", signature.Hex(tx.ID))
	for i, in := range tx.Inputs {
		txID, idx := in.Ref()
		fmt.Fprintf(w, "     Input %d:\n", i)
		fmt.Fprintf(w, "       TXID:      %s\n", signature.Hex(txID))
		fmt.Fprintf(w, "       Out:       %d\n", idx)
		fmt.Fprintf(w, "       ScriptSig: %s\n", in.ScriptSig)
	}
	for i, out := range tx.Outputs {
		fmt.Fprintf(w, "     Output %d:\n", i)
		fmt.Fprintf(w, "       Value:     %d\n", out.Value)
		fmt.Fprintf(w, "       Script:    %s\n", out.ScriptPubKey)
	}
}
