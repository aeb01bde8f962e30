package models

import (
	"bytes"
	"database/sql/driver"
	"fmt"
)

const (
	DescriptionSize = 256
	NameSize        = 32
)

// Description is the fixed-size, zero padded bet description buffer.
type Description [DescriptionSize]byte

// NewDescription copies s into a zero padded buffer. Longer input is rejected.
func NewDescription(s string) (Description, error) {
	var d Description
	if len(s) > DescriptionSize {
		return d, fmt.Errorf("description is %d bytes, max %d", len(s), DescriptionSize)
	}
	copy(d[:], s)
	return d, nil
}

func (d Description) String() string {
	return string(bytes.TrimRight(d[:], "\x00"))
}

func (d Description) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Description) UnmarshalText(text []byte) error {
	parsed, err := NewDescription(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (Description) GormDataType() string {
	return "bytes"
}

func (d Description) Value() (driver.Value, error) {
	return d[:], nil
}

func (d *Description) Scan(src interface{}) error {
	return scanFixed(d[:], src)
}

// Name is the fixed-size, zero padded profile display name.
type Name [NameSize]byte

func NewName(s string) (Name, error) {
	var n Name
	if len(s) > NameSize {
		return n, fmt.Errorf("name is %d bytes, max %d", len(s), NameSize)
	}
	copy(n[:], s)
	return n, nil
}

func (n Name) String() string {
	return string(bytes.TrimRight(n[:], "\x00"))
}

func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := NewName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func (Name) GormDataType() string {
	return "bytes"
}

func (n Name) Value() (driver.Value, error) {
	return n[:], nil
}

func (n *Name) Scan(src interface{}) error {
	return scanFixed(n[:], src)
}

func scanFixed(dst []byte, src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into fixed buffer", src)
	}
	if len(raw) > len(dst) {
		return fmt.Errorf("stored value is %d bytes, max %d", len(raw), len(dst))
	}
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, raw)
	return nil
}
