// Package cmd contains the ledger commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dbPath    string
	dbBackend string
	verbose   bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db-path", "d", "zblock/blocks.db", "Path to the block store.")
	rootCmd.PersistentFlags().StringVarP(&dbBackend, "db-backend", "b", storage.BackendBolt, "Store backend: bolt or badger.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log mining and storage events.")
}

var rootCmd = &cobra.Command{
	Use:           "ledger",
	Short:         "A single node proof of work ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	log, err := logger.New("LEDGER", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log, os.Args[1:]); err != nil {
		log.Errorw("ledger", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger, args []string) error {
	evLog = log
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// evLog receives the blockchain events when verbose is set.
var evLog *zap.SugaredLogger

func evHandler() func(v string, args ...any) {
	if !verbose || evLog == nil {
		return nil
	}
	return logger.EvHandler(evLog)
}

// openChain opens the configured store and the chain it holds.
func openChain() (*database.Blockchain, error) {
	strg, err := disk.Open(storage.Config{
		Backend: dbBackend,
		Path:    dbPath,
	})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	bc, err := database.Open(database.Config{
		Store:     strg,
		EvHandler: evHandler(),
	})
	if err != nil {
		strg.Close()
		return nil, err
	}

	return bc, nil
}
