package errors

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/matzehuels/dreamscape/pkg/shapes"
)

// Request limits shared by the CLI and the HTTP API.
const (
	MinDimension = 256
	MaxDimension = 4096

	MinBlockRange = 1
	MaxBlockRange = 50
)

// ValidateStyle parses a style name. The empty string is rejected; callers
// apply their own default first.
func ValidateStyle(name string) (shapes.Style, error) {
	s, err := shapes.ParseStyle(name)
	if err != nil {
		return 0, New(ErrCodeInvalidStyle, "invalid style %q (want one of %s)", name, strings.Join(shapes.StyleNames(), ", "))
	}
	return s, nil
}

// ValidateDimension checks that a canvas dimension lies in
// [MinDimension, MaxDimension].
func ValidateDimension(name string, v int) error {
	if v < MinDimension || v > MaxDimension {
		return New(ErrCodeInvalidSize, "%s must be between %d and %d, got %d", name, MinDimension, MaxDimension, v)
	}
	return nil
}

// ValidateBlockRange checks the number of consecutive blocks requested.
func ValidateBlockRange(n int) error {
	if n < MinBlockRange || n > MaxBlockRange {
		return New(ErrCodeInvalidInput, "range must be between %d and %d, got %d", MinBlockRange, MaxBlockRange, n)
	}
	return nil
}

// PublicKeyLength is the decoded size of a Solana public key.
const PublicKeyLength = 32

// ValidateSolanaAddress checks that addr is a base58-encoded 32-byte public
// key.
func ValidateSolanaAddress(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidAddress, "address cannot be empty")
	}
	// Base58 of 32 bytes never exceeds 44 characters.
	if len(addr) > 44 {
		return New(ErrCodeInvalidAddress, "invalid address %q: too long", addr)
	}
	key, err := base58.Decode(addr)
	if err != nil {
		return Wrap(ErrCodeInvalidAddress, err, "invalid address %q: not base58", addr)
	}
	if len(key) != PublicKeyLength {
		return New(ErrCodeInvalidAddress, "invalid address %q: decodes to %d bytes, want %d", addr, len(key), PublicKeyLength)
	}
	return nil
}

// ValidatePieceID checks that id is a UUID in canonical form.
func ValidatePieceID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidInput, "invalid piece id %q", id)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
