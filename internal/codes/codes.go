// Package codes issues handover confirmation codes and post identifiers.
package codes

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// DefaultLength is the number of digits in a handover code.
const DefaultLength = 4

// idLayout prefixes every post id; ids sort by creation time to the millisecond.
const idLayout = "20060102150405.000"

const idRandomDigits = 3

// Code returns n uniformly random decimal digits.
func Code(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", n)
	}
	ten := big.NewInt(10)
	result := make([]byte, n)
	for i := range result {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generating code: %w", err)
		}
		result[i] = byte('0' + d.Int64())
	}
	return string(result), nil
}

// NewID returns a sortable post id: the creation time to the millisecond
// followed by random digits, e.g. "20260314183000123" + "042".
func NewID(now time.Time) (string, error) {
	suffix, err := Code(idRandomDigits)
	if err != nil {
		return "", err
	}
	ts := now.Format(idLayout)
	// Drop the decimal point from the millisecond fraction.
	return ts[:14] + ts[15:] + suffix, nil
}

// Issuer hands out codes and ids to the lifecycle engine.
type Issuer interface {
	Code() (string, error)
	ID(now time.Time) (string, error)
}

// RandomIssuer is the production Issuer.
type RandomIssuer struct {
	Length int
}

// NewIssuer returns a RandomIssuer producing codes of the given length.
// A non-positive length selects DefaultLength.
func NewIssuer(length int) *RandomIssuer {
	if length <= 0 {
		length = DefaultLength
	}
	return &RandomIssuer{Length: length}
}

// Code implements Issuer.
func (r *RandomIssuer) Code() (string, error) {
	return Code(r.Length)
}

// ID implements Issuer.
func (r *RandomIssuer) ID(now time.Time) (string, error) {
	return NewID(now)
}
