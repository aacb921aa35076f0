package rbxdom

import (
	"strings"

	uuid "github.com/satori/go.uuid"
)

// Ref is a globally unique 128-bit identifier for an Instance. The zero
// value is the null Ref, which never refers to an instance.
//
// Refs are values: copying a Ref never copies the instance it points to,
// and two Refs compare equal exactly when they were generated from (or
// parsed into) the same 128 bits.
type Ref [16]byte

// NewRef generates a new, non-null Ref from a cryptographically random
// source. Collisions across independently generated Refs are negligible.
func NewRef() Ref {
	var r Ref
	copy(r[:], uuid.NewV4().Bytes())
	return r
}

// NoRef is the null Ref, used to indicate the absence of a reference.
var NoRef = Ref{}

// IsSome returns whether the Ref is non-null.
func (r Ref) IsSome() bool {
	return r != NoRef
}

// IsNone returns whether the Ref is null.
func (r Ref) IsNone() bool {
	return r == NoRef
}

const refPrefix = "RBX"
const hexDigits = "0123456789ABCDEF"

// String returns the canonical textual form of the Ref, as used in XML
// referent attributes: the literal "RBX" followed by 32 uppercase hex
// characters. The null Ref renders as "null".
func (r Ref) String() string {
	if r.IsNone() {
		return "null"
	}
	var buf [len(refPrefix) + 32]byte
	copy(buf[:], refPrefix)
	enc := buf[len(refPrefix):]
	for i, b := range r {
		enc[i*2] = hexDigits[b>>4]
		enc[i*2+1] = hexDigits[b&0xf]
	}
	return string(buf[:])
}

// ParseRef parses the canonical textual form of a Ref (case-insensitive
// "RBX" prefix followed by 32 hex characters). It returns false if s is not
// in this form; callers that need to preserve unrecognized referent tokens
// for later resolution (see the xml package) should keep the original
// string rather than discard it on failure.
func ParseRef(s string) (ref Ref, ok bool) {
	if len(s) != len(refPrefix)+32 || !strings.EqualFold(s[:len(refPrefix)], refPrefix) {
		return Ref{}, false
	}
	hex := s[len(refPrefix):]
	for i := 0; i < 16; i++ {
		hi, ok := unhex(hex[i*2])
		if !ok {
			return Ref{}, false
		}
		lo, ok := unhex(hex[i*2+1])
		if !ok {
			return Ref{}, false
		}
		ref[i] = hi<<4 | lo
	}
	return ref, true
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// IsEmptyReferent returns whether a raw referent token is considered
// "empty" and therefore does not refer to any instance. This matches the
// tokens Roblox's own codec treats as absent.
func IsEmptyReferent(token string) bool {
	switch token {
	case "", "null", "nil":
		return true
	default:
		return false
	}
}
