package domain

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Address is a 32-byte actor identifier. The text form is base58.
type Address [32]byte

var (
	// ZeroAddress is never a valid transfer destination or owner.
	ZeroAddress = Address{}

	// BurnAddress is the sentinel owner recorded for burned tokens so
	// the token record survives for audit.
	BurnAddress = Address{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}
)

var ErrBadAddress = errors.New("bad address")

func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, fmt.Errorf("%w: empty", ErrBadAddress)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	if len(raw) != len(Address{}) {
		return Address{}, fmt.Errorf("%w: want %d bytes, got %d", ErrBadAddress, len(Address{}), len(raw))
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

func (a Address) String() string { return base58.Encode(a[:]) }

func (a Address) IsZero() bool { return a == ZeroAddress }

func (a Address) IsBurn() bool { return a == BurnAddress }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(bytes.TrimSpace(text)))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
