package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/mr-tron/base58"
)

// Address is a 32-byte participant or record address, base58 encoded on the wire.
type Address [32]byte

func AddressFromBase58(s string) (Address, error) {
	var a Address
	raw, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) != len(a) {
		return a, fmt.Errorf("invalid address %q: expected %d bytes, got %d", s, len(a), len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Ptr() *Address {
	return &a
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := AddressFromBase58(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (Address) GormDataType() string {
	return "string"
}

func (a Address) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Address) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", src)
	}
}

// AddressEqual compares two optional addresses.
func AddressEqual(a, b *Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
