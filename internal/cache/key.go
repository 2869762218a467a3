package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// Fingerprint derives the cache key for a request from the endpoint name
// and its normalized parameters. url.Values.Encode emits keys in sorted
// order, so two logically identical requests produce identical fingerprints
// regardless of how their arguments were supplied.
func Fingerprint(endpoint string, params url.Values) string {
	h := sha256.Sum256([]byte(endpoint + "?" + params.Encode()))
	return hex.EncodeToString(h[:])
}
