// Package shortcode derives short codes from long URLs.
//
// A code is the SHA-256 digest of the URL encoded in base 62 and cut to
// Length characters. The same URL always yields the same code, and two
// different URLs may share one: no collision handling happens here.
package shortcode

import (
	"crypto/sha256"
	"math/big"
	"strings"
)

const (
	// Alphabet is the base-62 digit set: digits, then lowercase, then uppercase letters.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Length is the number of characters in a short code.
	Length = 7
)

// Generate returns the short code of longURL.
func Generate(longURL string) string {
	sum := sha256.Sum256([]byte(longURL))
	encoded := encode(sum[:])

	if len(encoded) < Length {
		return encoded
	}

	return encoded[:Length]
}

// encode converts b, read as a big-endian unsigned integer, to base 62.
// Every leading zero byte becomes one leading Alphabet[0].
func encode(b []byte) string {
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}

	prefix := strings.Repeat(Alphabet[:1], zeros)

	n := new(big.Int).SetBytes(b)
	if n.Sign() == 0 {
		return prefix
	}

	// big.Int uses the same digit order as Alphabet for base 62.
	return prefix + n.Text(len(Alphabet))
}
