package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a 64-bit identifier interpreted as unsigned. Its external form is the
// unsigned decimal string, never a JSON number.
type ID uint64

// signBit flips the top bit so that signed ordering of the stored value
// matches unsigned ordering of the ID.
const signBit = uint64(1) << 63

// ParseID parses an unsigned decimal string.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(v), nil
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON encodes the ID as a quoted unsigned decimal.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts only the quoted unsigned decimal form.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("id must be a decimal string: %w", err)
	}
	v, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	v, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// Stored returns the order-preserving BIGINT encoding of the ID.
func (id ID) Stored() int64 {
	return int64(uint64(id) ^ signBit)
}

// IDFromStored reverses Stored.
func IDFromStored(v int64) ID {
	return ID(uint64(v) ^ signBit)
}

// Value implements driver.Valuer.
func (id ID) Value() (driver.Value, error) {
	return id.Stored(), nil
}

// Scan implements sql.Scanner.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*id = IDFromStored(v)
		return nil
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("scan id: %w", err)
		}
		*id = IDFromStored(n)
		return nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("scan id: %w", err)
		}
		*id = IDFromStored(n)
		return nil
	default:
		return fmt.Errorf("scan id: unsupported type %T", src)
	}
}

// NullID is an optional ID column.
type NullID struct {
	ID    ID
	Valid bool
}

func (n NullID) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.ID.Value()
}

func (n *NullID) Scan(src any) error {
	if src == nil {
		n.ID, n.Valid = 0, false
		return nil
	}
	n.Valid = true
	return n.ID.Scan(src)
}

// Ptr returns nil for an absent value.
func (n NullID) Ptr() *ID {
	if !n.Valid {
		return nil
	}
	id := n.ID
	return &id
}

// NullIDFrom wraps an optional ID.
func NullIDFrom(id *ID) NullID {
	if id == nil {
		return NullID{}
	}
	return NullID{ID: *id, Valid: true}
}
