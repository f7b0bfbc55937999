// Package vericode generates the short codes stamped onto issued
// documents. A code doubles as a bearer capability for the public
// verification endpoint, so generation is backed by crypto/rand and
// never derived from timestamps or counters.
package vericode

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// Length is the fixed verification code length, in characters.
const Length = 16

// Alphabet is the 32-symbol Crockford base32 set. I, L, O and U are
// excluded so codes survive transcription from print.
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// New returns a fresh verification code: Length characters drawn
// uniformly from Alphabet, 80 bits of entropy.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}

// Normalize uppercases a candidate code and strips surrounding
// whitespace plus any separators a holder may have typed.
func Normalize(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '_':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	return strings.ToUpper(cleaned)
}

// WellFormed reports whether a normalized code has the expected shape.
// It is a cheap guard against junk lookups, not a security boundary.
func WellFormed(code string) bool {
	if len(code) != Length {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Serial builds the cosmetic document serial printed on artifacts,
// shaped {prefix}-{unix millis}-{4 random chars}. It is human
// reference only and is never accepted in place of a verification code.
func Serial(prefix string, now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return fmt.Sprintf("%s-%d-%s", strings.ToUpper(prefix), now.UnixMilli(), string(buf)), nil
}
