// Package hash provides the layered BLAKE3 hashing used across the ledger.
// Credentials use the double depth, recovery words and hardware fingerprints
// use the single depth, and block content uses a single application over the
// canonical block text.
package hash

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// Fixture values used to prove the hash chain is producing the expected
// digests. A node must refuse to start if these don't verify.
const (
	verifyInput  = "test"
	singleDigest = "4878ca0425c739fa427f7eda20fe845f6b2e46ba5fe2a14df5b1e32f50603215"
	doubleDigest = "55beb65d3293549b07cf215978375cf674d82de8657775da6c0f697b4e6b5e0b"
	tripleDigest = "1af8e96926a936cce32a1e304a068a3379968fd28c0843dcb08186adfaba1441"
)

// Single returns the hex encoded BLAKE3 digest of the value.
func Single(value string) string {
	digest := blake3.Sum256([]byte(value))
	return hex.EncodeToString(digest[:])
}

// Double applies the base digest twice. This is the depth used for
// account credentials.
func Double(value string) string {
	return Single(Single(value))
}

// Triple applies the base digest three times. No ledger operation depends
// on this depth today; it exists as part of the startup self-test only.
func Triple(value string) string {
	return Single(Double(value))
}

// Verify runs the three hash depths against known fixtures. An error here
// means the cryptographic primitive is corrupt and the process must not
// start.
func Verify() error {
	if got := Single(verifyInput); got != singleDigest {
		return fmt.Errorf("single hash self-test failed, got %s, exp %s", got, singleDigest)
	}

	if got := Double(verifyInput); got != doubleDigest {
		return fmt.Errorf("double hash self-test failed, got %s, exp %s", got, doubleDigest)
	}

	if got := Triple(verifyInput); got != tripleDigest {
		return fmt.Errorf("triple hash self-test failed, got %s, exp %s", got, tripleDigest)
	}

	return nil
}
