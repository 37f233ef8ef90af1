package ident

import (
	"crypto/rand"
	"math/big"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	length   = 9
)

// New returns a short opaque identifier: 9 random base-36 characters.
// Identifiers carry no ordering or timestamp information.
func New() string {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// nothing sensible to do but panic like uuid.NewString does.
			panic(err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf)
}
