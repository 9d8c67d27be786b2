package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
)

// ErrMalformedInteger is returned when a JSON value is not a base-10 integer.
var ErrMalformedInteger = errors.New("value must be a base-10 integer")

// ParseInteger reads a 128-bit quantity from JSON. Decimal strings ("10") are
// the canonical form; bare numbers are accepted. A missing value yields nil.
func ParseInteger(raw json.RawMessage) (*big.Int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, ErrMalformedInteger
		}
	}
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, ErrMalformedInteger
	}
	return v, nil
}

// FormatInteger renders v as a decimal string, the JSON form of 128-bit values.
func FormatInteger(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}
