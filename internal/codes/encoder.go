// Package codes turns numeric ids into short, fixed-length, non-sequential
// share codes and back.
//
// An id is multiplied by a constant modulo N = K^L (K alphabet symbols, L code
// length) and written in base K. Because the multiplier is coprime with N the
// mapping is a bijection on [0, N). The parameters are a contract with every
// code ever handed out: changing them after deployment breaks old codes.
package codes

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// Production parameters. DO NOT change after deployment.
const (
	DefaultAlphabet   = "QZXSWDCVFRTGBYHNMJKLP"
	DefaultLength     = 6
	DefaultMultiplier = 2766917
)

var (
	ErrInvalidEncoderParameters = errors.New("codes: invalid encoder parameters")
	ErrInvalidCodeCharacter     = errors.New("codes: invalid code character")
	ErrInvalidCodeLength        = errors.New("codes: invalid code length")
)

// Encoder is immutable and safe for concurrent use.
type Encoder struct {
	alphabet   []rune
	digits     map[rune]uint64
	length     int
	base       uint64
	modulus    uint64 // K^L
	multiplier uint64 // reduced modulo modulus
	inverse    uint64 // multiplier⁻¹ mod modulus
}

// New validates the parameters and precomputes the modular inverse.
func New(alphabet string, length int, multiplier int64) (*Encoder, error) {
	runes := []rune(alphabet)
	if len(runes) < 2 {
		return nil, fmt.Errorf("%w: alphabet needs at least 2 symbols, got %d", ErrInvalidEncoderParameters, len(runes))
	}
	digits := make(map[rune]uint64, len(runes))
	for i, r := range runes {
		if _, dup := digits[r]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %q in alphabet", ErrInvalidEncoderParameters, r)
		}
		digits[r] = uint64(i)
	}
	if length < 1 {
		return nil, fmt.Errorf("%w: length must be positive, got %d", ErrInvalidEncoderParameters, length)
	}

	base := uint64(len(runes))
	modulus := uint64(1)
	for i := 0; i < length; i++ {
		hi, lo := bits.Mul64(modulus, base)
		if hi != 0 || lo > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d^%d overflows int64", ErrInvalidEncoderParameters, base, length)
		}
		modulus = lo
	}

	m := reduce(multiplier, modulus)
	inv, ok := modInverse(m, modulus)
	if !ok {
		return nil, fmt.Errorf("%w: multiplier %d is not coprime with %d", ErrInvalidEncoderParameters, multiplier, modulus)
	}

	return &Encoder{
		alphabet:   runes,
		digits:     digits,
		length:     length,
		base:       base,
		modulus:    modulus,
		multiplier: m,
		inverse:    inv,
	}, nil
}

// Default returns the encoder with the production parameters.
func Default() *Encoder {
	e, err := New(DefaultAlphabet, DefaultLength, DefaultMultiplier)
	if err != nil {
		panic(err)
	}
	return e
}

// Size is N, the number of distinct codes. Ids are unique modulo Size.
func (e *Encoder) Size() int64 { return int64(e.modulus) }

// Encode returns the code for id. Ids outside [0, Size) are reduced modulo
// Size first, so id and id+Size share a code.
func (e *Encoder) Encode(id int64) string {
	v := mulMod(reduce(id, e.modulus), e.multiplier, e.modulus)

	out := make([]rune, e.length)
	for i := e.length - 1; i >= 0; i-- {
		out[i] = e.alphabet[v%e.base]
		v /= e.base
	}
	return string(out)
}

// Decode returns the id in [0, Size) that encodes to code.
func (e *Encoder) Decode(code string) (int64, error) {
	code = strings.TrimSpace(code)
	runes := []rune(code)
	if len(runes) != e.length {
		return 0, fmt.Errorf("%w: want %d symbols, got %d", ErrInvalidCodeLength, e.length, len(runes))
	}

	var v uint64
	for _, r := range runes {
		d, ok := e.digits[r]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCodeCharacter, r)
		}
		v = v*e.base + d
	}
	return int64(mulMod(v, e.inverse, e.modulus)), nil
}

// ─── MODULAR ARITHMETIC ──────────────────────────────────────────────────────

// reduce maps any int64 into [0, m).
func reduce(x int64, m uint64) uint64 {
	r := x % int64(m)
	if r < 0 {
		r += int64(m)
	}
	return uint64(r)
}

// mulMod computes a*b mod m without overflow using the 128-bit product.
func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi%m, lo, m)
	return rem
}

// modInverse finds x with a*x ≡ 1 (mod m) by the extended Euclidean
// algorithm. ok is false when gcd(a, m) != 1.
func modInverse(a, m uint64) (uint64, bool) {
	if m == 1 {
		return 0, true
	}
	oldR, r := int64(a), int64(m)
	oldS, s := int64(1), int64(0)
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
	}
	if oldR != 1 {
		return 0, false
	}
	return reduce(oldS, m), true
}
