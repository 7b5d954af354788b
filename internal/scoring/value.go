package scoring

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// valueScale is the number of hundredths in one unit. Scores, deltas and
// thresholds are all stored with two decimal places.
const valueScale = 100

// Value is a fixed-point number with two decimal places, stored as an int64
// count of hundredths. Addition and subtraction are exact, which is what makes
// forward/backward processing exact inverses of each other.
type Value int64

// NewValue builds a Value from whole units and hundredths, e.g. NewValue(3, 50)
// is 3.50. The sign of whole is applied to the hundredths as well.
func NewValue(whole int64, hundredths int64) Value {
	if whole < 0 {
		return Value(whole*valueScale - hundredths)
	}
	return Value(whole*valueScale + hundredths)
}

// parseDecimal parses a decimal string such as "3", "-0.5" or "1e2" exactly.
func parseDecimal(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("scoring: parse value: empty string")
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("scoring: parse value: %q is not a number", s)
	}
	return r, nil
}

// ParseValue parses a decimal string exactly and rounds it half away from
// zero to two decimal places.
func ParseValue(s string) (Value, error) {
	r, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	r.Mul(r, big.NewRat(valueScale, 1))

	num := new(big.Int).Set(r.Num())
	den := r.Denom()
	neg := num.Sign() < 0
	num.Abs(num)

	// round half away from zero: (2*num + den) / (2*den)
	num.Mul(num, big.NewInt(2))
	num.Add(num, den)
	num.Quo(num, new(big.Int).Mul(den, big.NewInt(2)))

	if !num.IsInt64() {
		return 0, fmt.Errorf("scoring: parse value: %q out of range", s)
	}
	v := num.Int64()
	if neg {
		v = -v
	}
	return Value(v), nil
}

// MustParseValue is ParseValue for constants in tests and seeds. It panics on
// malformed input.
func MustParseValue(s string) Value {
	v, err := ParseValue(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Float64 returns the value as a float, for display only.
func (v Value) Float64() float64 {
	return float64(v) / valueScale
}

// rat is the exact rational form of v.
func (v Value) rat() *big.Rat {
	return big.NewRat(int64(v), valueScale)
}

// add returns v+d, or false when the sum does not fit in a Value.
func (v Value) add(d Value) (Value, bool) {
	sum := v + d
	if (d > 0 && sum < v) || (d < 0 && sum > v) {
		return 0, false
	}
	return sum, true
}

// String formats the value with exactly two decimals, e.g. "3.50".
func (v Value) String() string {
	sign := ""
	n := int64(v)
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%s%d.%02d", sign, n/valueScale, n%valueScale)
}

// MarshalJSON encodes the value as a JSON number.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (v *Value) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = unq
	}
	parsed, err := ParseValue(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UnmarshalYAML accepts scalar numbers in snapshot seed files. The signature
// matches yaml.v3's obsolete Unmarshaler so this package does not import yaml.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseValue(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

var _ json.Marshaler = Value(0)
