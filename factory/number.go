package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a JSON numeric field that also tolerates numeric strings, the
// way HTML form values arrive. Interpretation is deferred until validation
// so errors can carry the field path.
type Number struct {
	raw json.RawMessage
}

// NewNumber wraps a float64, for building requests in code. NaN and ±Inf
// become 0.
func NewNumber(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return Number{raw: json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	n.raw = append(n.raw[:0], data...)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if len(n.raw) == 0 {
		return []byte("null"), nil
	}
	return n.raw, nil
}

// IsZero reports whether the field was absent or null.
func (n Number) IsZero() bool {
	raw := bytes.TrimSpace(n.raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

var (
	errNotNumeric = errors.New("must be a number")
	errBadNumber  = errors.New("is not a valid number")
	errTooLarge   = errors.New("is too large")
)

// Decimal interprets the raw value. Absent, null and "" are zero.
func (n Number) Decimal() (decimal.Decimal, error) {
	if n.IsZero() {
		return decimal.Zero, nil
	}
	raw := bytes.TrimSpace(n.raw)

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, errBadNumber
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, errBadNumber
		}
		return d, nil
	case c == '-' || (c >= '0' && c <= '9'):
		d, err := decimal.NewFromString(string(raw))
		if err != nil {
			return decimal.Zero, errBadNumber
		}
		return d, nil
	default:
		return decimal.Zero, errNotNumeric
	}
}

// Float is Decimal converted for the engine.
func (n Number) Float() (float64, error) {
	d, err := n.Decimal()
	if err != nil {
		return 0, err
	}
	return toFloat(d)
}

// toFloat rejects values that do not fit in a float64.
func toFloat(d decimal.Decimal) (float64, error) {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errTooLarge
	}
	return f, nil
}
