package cmd

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/spf13/cobra"
)

var createAddress string

var createChainCmd = &cobra.Command{
	Use:   "createchain",
	Short: "Create a chain whose origin block rewards an address.",
	RunE:  createChainRun,
}

func init() {
	rootCmd.AddCommand(createChainCmd)
	createChainCmd.Flags().StringVarP(&createAddress, "address", "a", "", "Address receiving the origin reward.")
	createChainCmd.MarkFlagRequired("address")
}

func createChainRun(cmd *cobra.Command, args []string) error {
	strg, err := disk.Open(storage.Config{
		Backend: dbBackend,
		Path:    dbPath,
	})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	bc, err := database.Create(database.Config{Store: strg, EvHandler: evHandler()}, createAddress)
	if err != nil {
		strg.Close()
		if errors.Is(err, database.ErrChainExists) {
			return fmt.Errorf("%w at %s", err, dbPath)
		}
		return err
	}
	defer bc.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Done! Origin block %s rewards %s\n", signature.Hex(bc.Tip()), createAddress)
	return nil
}
