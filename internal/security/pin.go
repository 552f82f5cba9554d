package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	DefaultPinBytes = 4
	MinPinBytes     = 4
)

type PinGenerator interface {
	Generate() (string, error)
}

// HexPinGenerator emits 2*n lower-case hex characters from n random bytes.
type HexPinGenerator struct {
	n int
}

func NewHexPinGenerator(n int) *HexPinGenerator {
	if n < MinPinBytes {
		n = MinPinBytes
	}
	return &HexPinGenerator{n: n}
}

func (g *HexPinGenerator) Generate() (string, error) {
	buf := make([]byte, g.n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read pin entropy: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (g *HexPinGenerator) Length() int {
	return g.n * 2
}
