package shortener

import (
	"fmt"
	"strings"

	"github.com/jaevor/go-nanoid"
)

// Alphabet is the set of symbols a generated code is drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

const (
	DefaultCodeLength = 8
	maxCodeLength     = 64
)

// CodeGenerator generates random short codes.
type CodeGenerator func() string

// NewCodeGenerator returns a generator of codes with exactly length symbols
// from Alphabet, read from crypto/rand.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length < 2 || length > maxCodeLength {
		return nil, fmt.Errorf("code length must be between 2 and %d, got %d", maxCodeLength, length)
	}

	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, err
	}

	return CodeGenerator(gen), nil
}

// ValidCode reports whether every symbol of code belongs to Alphabet.
func ValidCode(code Code) bool {
	if code == "" {
		return false
	}

	for _, r := range string(code) {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}

	return true
}
