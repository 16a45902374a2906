package nanoid

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphanumeric is URL and copy-paste safe.
	Alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	defaultSize = 16
	// TokenSize gives roughly 285 bits of entropy over Alphanumeric.
	TokenSize = 48
)

func getSize(l ...int) int {
	size := defaultSize
	if len(l) > 0 && l[0] > 0 {
		size = l[0]
	}
	return size
}

// String generate optional length alphanumeric nanoid
func String(l ...int) string {
	return gonanoid.MustGenerate(Alphanumeric, getSize(l...))
}

// Token generates an unguessable public token.
func Token() (string, error) {
	return gonanoid.Generate(Alphanumeric, TokenSize)
}

// IsToken reports whether s has the shape of a token produced by Token.
func IsToken(s string) bool {
	if len(s) != TokenSize {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(Alphanumeric, r) {
			return false
		}
	}
	return true
}
