package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxIdentifierLen bounds identifiers accepted by ParseIdentifier.
const MaxIdentifierLen = 256

// Identifier names a biological entity: an NCBI taxonomy ID or a scientific name.
type Identifier string

// ParseIdentifier trims and validates raw input.
func ParseIdentifier(raw string) (Identifier, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", invalidIdentifier(raw, "identifier is empty")
	}
	if len(s) > MaxIdentifierLen {
		return "", invalidIdentifier(raw, fmt.Sprintf("identifier longer than %d bytes", MaxIdentifierLen))
	}
	if !utf8.ValidString(s) {
		return "", invalidIdentifier(raw, "identifier is not valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", invalidIdentifier(raw, "identifier contains control characters")
		}
	}
	if isAllDigits(s) && strings.TrimLeft(s, "0") == "" {
		return "", invalidIdentifier(raw, "taxonomy id must be positive")
	}
	return Identifier(s), nil
}

// IsTaxID reports whether the identifier is a numeric taxonomy ID.
func (id Identifier) IsTaxID() bool {
	return id != "" && isAllDigits(string(id))
}

func (id Identifier) String() string { return string(id) }

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func invalidIdentifier(raw, msg string) error {
	return &OpError{
		Op:   "domain.identifier",
		Kind: KindInvalidIdentifier,
		Path: raw,
		Err:  fmt.Errorf("%s: %w", msg, ErrInvalidIdentifier),
	}
}
