package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the integrity of every stored block.",
	RunE:  verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func verifyRun(cmd *cobra.Command, args []string) error {
	bc, err := openChain()
	if err != nil {
		return err
	}
	defer bc.Close()

	if err := bc.Verify(); err != nil {
		return fmt.Errorf("chain is invalid: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Chain is valid")
	return nil
}
