package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	log, err := logger.New("TEST", "stderr")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a logger: %v", failed, err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	err = run(log, args)
	return out.String(), err
}

func Test_Commands(t *testing.T) {
	t.Log("Given the need to drive the ledger from the command line.")
	{
		db := filepath.Join(t.TempDir(), "blocks.db")

		t.Logf("\tTest 0:\tWhen creating a chain.")
		{
			out, err := execute(t, "createchain", "--address", "A", "--db-path", db)
			if err != nil || !strings.Contains(out, "rewards A") {
				t.Fatalf("\t%s\tTest 0:\tShould create the chain: %v: %s", failed, err, out)
			}
			t.Logf("\t%s\tTest 0:\tShould create the chain.", success)

			if _, err := execute(t, "createchain", "--address", "A", "--db-path", db); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould refuse to create the chain twice.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould refuse to create the chain twice.", success)
		}

		t.Logf("\tTest 1:\tWhen sending and mining.")
		{
			if _, err := execute(t, "send", "--from", "A", "--to", "B", "--amount", "3", "--db-path", db); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould send: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould send.", success)

			if _, err := execute(t, "mine", "--address", "B", "--db-path", db); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould mine: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould mine.", success)

			out, err := execute(t, "getbalance", "--address", "B", "--db-path", db)
			if err != nil || !strings.Contains(out, "Balance of 'B': 13") {
				t.Fatalf("\t%s\tTest 1:\tShould report 13 for B: %v: %s", failed, err, out)
			}
			t.Logf("\t%s\tTest 1:\tShould report 13 for B.", success)

			out, err = execute(t, "getbalance", "--address", "A", "--db-path", db)
			if err != nil || !strings.Contains(out, "Balance of 'A': 7") {
				t.Fatalf("\t%s\tTest 1:\tShould report 7 for A: %v: %s", failed, err, out)
			}
			t.Logf("\t%s\tTest 1:\tShould report 7 for A.", success)

			if _, err := execute(t, "send", "--from", "A", "--to", "B", "--amount", "30", "--db-path", db); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould refuse to overspend.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould refuse to overspend.", success)
		}

		t.Logf("\tTest 2:\tWhen printing and verifying the chain.")
		{
			out, err := execute(t, "printchain", "--db-path", db)
			if err != nil || strings.Count(out, "============ Block") != 3 || strings.Contains(out, "PoW:         false") {
				t.Fatalf("\t%s\tTest 2:\tShould print 3 valid blocks: %v: %s", failed, err, out)
			}
			t.Logf("\t%s\tTest 2:\tShould print 3 valid blocks.", success)

			out, err = execute(t, "verify", "--db-path", db)
			if err != nil || !strings.Contains(out, "Chain is valid") {
				t.Fatalf("\t%s\tTest 2:\tShould verify the chain: %v: %s", failed, err, out)
			}
			t.Logf("\t%s\tTest 2:\tShould verify the chain.", success)
		}

		t.Logf("\tTest 3:\tWhen no chain exists.")
		{
			empty := filepath.Join(t.TempDir(), "blocks.db")
			if _, err := execute(t, "printchain", "--db-path", empty); err == nil {
				t.Fatalf("\t%s\tTest 3:\tShould report the missing chain.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould report the missing chain.", success)
		}
	}
}
