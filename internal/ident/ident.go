// Package ident generates the short task identifiers used throughout
// shikigami: a fixed prefix followed by 4-6 lowercase alphanumerics, short
// enough to type and to address by unique prefix.
package ident

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultPrefix is prepended to every generated identifier.
	DefaultPrefix = "sg-"

	// ShortLen and LongLen bound the random suffix. Generation starts at
	// ShortLen and widens to LongLen when collisions repeat.
	ShortLen = 4
	LongLen  = 6

	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Exists reports whether a candidate identifier is already taken.
type Exists func(id string) (bool, error)

// Random returns prefix plus n random characters from the id alphabet.
func Random(prefix string, n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms; fall back to a
		// UUID-derived suffix rather than panic.
		return Fallback(prefix)
	}
	var b strings.Builder
	b.WriteString(prefix)
	for _, c := range buf {
		b.WriteByte(alphabet[int(c)%len(alphabet)])
	}
	return b.String()
}

// Fallback returns a high-entropy identifier for the pathological case where
// short generation keeps colliding.
func Fallback(prefix string) string {
	u := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + u[:12]
}

// New generates a fresh identifier that exists reports as unused. It tries
// ShortLen suffixes a few times, widens to LongLen, then falls back to
// high-entropy generation which is assumed collision-free.
func New(prefix string, exists Exists) (string, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	for _, n := range []int{ShortLen, ShortLen, ShortLen, LongLen, LongLen} {
		id := Random(prefix, n)
		taken, err := exists(id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return Fallback(prefix), nil
}
