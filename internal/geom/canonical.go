package geom

import (
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// labelPrefix matches the positional dump labels ("n42:") that an
// AbstractNode dump carries for human debugging but that must not
// participate in cache-key equality, per spec.md §9 "Cache key
// canonicalisation".
var labelPrefix = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*\d*:`)

// Canonicalize strips label prefixes and whitespace from a term dump,
// producing the text CacheID hashes.
func Canonicalize(dump string) string {
	stripped := labelPrefix.ReplaceAllString(dump, "")
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CacheID hashes a canonical dump to a fixed-width key with blake2b,
// so cache map keys don't grow with term size.
func CacheID(dump string) string {
	sum := blake2b.Sum256([]byte(Canonicalize(dump)))
	return hex.EncodeToString(sum[:])
}
