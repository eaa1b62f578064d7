package hash_test

import (
	"testing"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/hash"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Depths(t *testing.T) {
	type table struct {
		name  string
		hash  func(string) string
		input string
		exp   string
	}

	tt := []table{
		{
			name:  "single",
			hash:  hash.Single,
			input: "test",
			exp:   "4878ca0425c739fa427f7eda20fe845f6b2e46ba5fe2a14df5b1e32f50603215",
		},
		{
			name:  "double",
			hash:  hash.Double,
			input: "test",
			exp:   "55beb65d3293549b07cf215978375cf674d82de8657775da6c0f697b4e6b5e0b",
		},
		{
			name:  "triple",
			hash:  hash.Triple,
			input: "test",
			exp:   "1af8e96926a936cce32a1e304a068a3379968fd28c0843dcb08186adfaba1441",
		},
	}

	t.Log("Given the need to validate the hash depths against the reference digests.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen hashing %q at depth %s.", testID, tst.input, tst.name)
			{
				f := func(t *testing.T) {
					got := tst.hash(tst.input)
					if got != tst.exp {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
						t.Fatalf("\t%s\tTest %d:\tShould produce the reference digest.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould produce the reference digest.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_Verify(t *testing.T) {
	t.Log("Given the need to validate the startup self-test.")
	{
		t.Log("\tTest 0:\tWhen running the self-test against the fixtures.")
		{
			if err := hash.Verify(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould pass the self-test: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould pass the self-test.", success)
		}
	}
}

func Test_DepthComposition(t *testing.T) {
	t.Log("Given the need to validate each depth is built on the one below it.")
	{
		t.Log("\tTest 0:\tWhen comparing composed depths.")
		{
			if hash.Double("vanilla") != hash.Single(hash.Single("vanilla")) {
				t.Fatalf("\t%s\tTest 0:\tShould have double equal single of single.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have double equal single of single.", success)

			if hash.Triple("vanilla") != hash.Single(hash.Double("vanilla")) {
				t.Fatalf("\t%s\tTest 0:\tShould have triple equal single of double.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have triple equal single of double.", success)
		}
	}
}
