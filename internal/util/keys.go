package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// StorageKey isolates key under namespace ns.
func StorageKey(ns, key string) string {
	return ns + ":" + key
}

// FitKey returns key unchanged when it is at most max bytes long and contains
// no bytes outside printable ASCII. Otherwise it returns a deterministic
// "h:" + hex(sha256) replacement. Used by backends with restrictive key rules.
func FitKey(key string, max int) string {
	if len(key) <= max && printable(key) {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return "h:" + hex.EncodeToString(sum[:])
}

func printable(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] <= ' ' || s[i] > '~' {
			return false
		}
	}
	return true
}
