// Package netlist defines the bit-level data model the rest of the pipeline
// operates on: signals, signal vectors, flat ports, cells and wires, plus the
// decoder for the hierarchical netlist input document.
package netlist

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Reserved synthesized cell type names.
const (
	TypeInputExt  = "$_inputExt_"
	TypeOutputExt = "$_outputExt_"
	TypeConstant  = "$_constant_"
	TypeSplit     = "$_split_"
	TypeJoin      = "$_join_"
)

// Signal is either an integer bit identifier or a literal constant bit ("0"/"1").
// The zero value is the integer signal 0, so callers constructing vectors by hand
// must use IntSignal/LiteralSignal rather than struct literals.
type Signal struct {
	lit string // "0" or "1" when this is a literal; "" when it carries an int
	num int
}

// IntSignal returns an integer-identified signal.
func IntSignal(n int) Signal { return Signal{num: n} }

// LiteralSignal returns a constant-bit signal. lit must be "0" or "1".
func LiteralSignal(lit string) Signal { return Signal{lit: lit} }

// IsLiteral reports whether s still carries an unsynthesized literal bit.
func (s Signal) IsLiteral() bool { return s.lit != "" }

// Literal returns the literal bit string ("0" or "1"); only valid when IsLiteral.
func (s Signal) Literal() string { return s.lit }

// Int returns the integer signal id; only valid when !IsLiteral.
func (s Signal) Int() int { return s.num }

// token renders the signal the way it appears in a canonical comma-delimited vector.
func (s Signal) token() string {
	if s.IsLiteral() {
		return s.lit
	}
	return strconv.Itoa(s.num)
}

// UnmarshalJSON accepts either a JSON number (integer signal) or the strings
// "0"/"1" (literal constant bit), matching the netlist wire format.
func (s *Signal) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("netlist: decoding signal: %w", err)
	}
	switch v := raw.(type) {
	case float64:
		*s = IntSignal(int(v))
		return nil
	case string:
		if v == "0" || v == "1" {
			*s = LiteralSignal(v)
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("netlist: invalid signal %q", v)
		}
		*s = IntSignal(n)
		return nil
	default:
		return fmt.Errorf("netlist: invalid signal value %v", raw)
	}
}

// MarshalJSON renders literal bits as JSON strings and integer signals as numbers.
func (s Signal) MarshalJSON() ([]byte, error) {
	if s.IsLiteral() {
		return json.Marshal(s.lit)
	}
	return json.Marshal(s.num)
}

// SignalVector is an ordered multi-bit port value; order is significant (bit 0 first).
type SignalVector []Signal

// Canonical renders the vector as ","+csv+"," so that substring search on the
// comma-delimited form tests subsequence matches cleanly.
func (v SignalVector) Canonical() string {
	var b strings.Builder
	b.WriteByte(',')
	for _, s := range v {
		b.WriteString(s.token())
		b.WriteByte(',')
	}
	return b.String()
}

// Equal reports whether two vectors carry the same signals in the same order.
func (v SignalVector) Equal(o SignalVector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// HasLiteral reports whether any element of v is still an unsynthesized literal.
func (v SignalVector) HasLiteral() bool {
	for _, s := range v {
		if s.IsLiteral() {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of v.
func (v SignalVector) Clone() SignalVector {
	out := make(SignalVector, len(v))
	copy(out, v)
	return out
}

// MaxSignal returns the largest integer signal id appearing in v, and whether
// v contained any integer signal at all.
func (v SignalVector) MaxSignal() (max int, ok bool) {
	for _, s := range v {
		if s.IsLiteral() {
			continue
		}
		if !ok || s.Int() > max {
			max = s.Int()
			ok = true
		}
	}
	return max, ok
}
