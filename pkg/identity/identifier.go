// Package identity provides the identifier model and the bidirectional
// identity registry that the wiring layer is built on.
//
// An Identifier is either a plain string or a Token. Tokens are globally
// unique and never collide with strings: the two forms are distinct Go
// types and are compared as-is, never coerced into each other.
package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// Identifier names a registered entity. Valid identifiers are non-empty
// strings and non-zero Tokens; anything else is rejected at registration.
type Identifier any

// Token is an opaque, globally unique identifier. The zero Token is invalid.
type Token struct {
	id    string
	label string
}

// NewToken mints a unique Token. The label is purely descriptive and has
// no bearing on uniqueness or equality.
func NewToken(label string) Token {
	return Token{id: uuid.NewString(), label: label}
}

// String returns a printable form of the token.
func (t Token) String() string {
	if t.label != "" {
		return fmt.Sprintf("token(%s/%s)", t.label, t.id)
	}
	return fmt.Sprintf("token(%s)", t.id)
}

// Valid reports whether id is a usable identifier: a non-empty string or
// a minted (non-zero) Token.
func Valid(id Identifier) bool {
	switch v := id.(type) {
	case string:
		return v != ""
	case Token:
		return v.id != ""
	default:
		return false
	}
}
