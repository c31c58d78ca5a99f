package id

import (
	"crypto/rand"
	"encoding/hex"
	"hash/fnv"
	"regexp"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Valid32 reports whether s is a 32-char lowercase hex id.
func Valid32(s string) bool { return reHex32.MatchString(s) }

// LastDigit returns the last decimal digit found in s, scanning from the end.
// Ids without any digit fall back to an FNV hash so the bucket stays stable.
func LastDigit(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if c := s[i]; c >= '0' && c <= '9' {
			return int(c - '0')
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % 10)
}

// InBucket reports whether the last digit of s is one of digits.
func InBucket(s string, digits []int) bool {
	d := LastDigit(s)
	for _, b := range digits {
		if b == d {
			return true
		}
	}
	return false
}
