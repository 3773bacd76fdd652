package address

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// MinLen is the length of the shortest candidate, "0.0.0.0".
	MinLen = 7
	// MaxLen is the length of the longest candidate, "255.255.255.255".
	MaxLen = 15
	// Max is the highest address in the search space.
	Max = ^uint32(0)
)

// ErrInvalidAddress is returned by Parse for text that is not a canonical
// dotted-decimal address.
var ErrInvalidAddress = errors.New("invalid dotted-decimal address")

// octet is the decimal text of one byte value.
type octet struct {
	digits [3]byte
	n      int
}

var octets [256]octet

func init() {
	for i := range octets {
		s := strconv.Itoa(i)
		copy(octets[i].digits[:], s)
		octets[i].n = len(s)
	}
}

// Encoder renders addresses into a reusable scratch buffer.
// The zero value is ready to use. An Encoder must not be shared between
// goroutines.
type Encoder struct {
	buf [MaxLen]byte
}

// Encode returns the dotted-decimal text of a. The returned slice aliases
// the encoder's buffer and is only valid until the next call to Encode.
func (e *Encoder) Encode(a uint32) []byte {
	o1 := &octets[a>>24]
	o2 := &octets[(a>>16)&0xFF]
	o3 := &octets[(a>>8)&0xFF]
	o4 := &octets[a&0xFF]

	n := copy(e.buf[:], o1.digits[:o1.n])
	e.buf[n] = '.'
	n++
	n += copy(e.buf[n:], o2.digits[:o2.n])
	e.buf[n] = '.'
	n++
	n += copy(e.buf[n:], o3.digits[:o3.n])
	e.buf[n] = '.'
	n++
	n += copy(e.buf[n:], o4.digits[:o4.n])

	return e.buf[:n]
}

// Len returns the length of the dotted-decimal text of a without encoding it.
func Len(a uint32) int {
	return octets[a>>24].n + octets[(a>>16)&0xFF].n + octets[(a>>8)&0xFF].n + octets[a&0xFF].n + 3
}

// Octets splits a into its four octets, most significant first.
func Octets(a uint32) [4]byte {
	return [4]byte{byte(a >> 24), byte(a >> 16), byte(a >> 8), byte(a)}
}

// Format returns the dotted-decimal text of a as a freshly allocated string.
// Use an Encoder on hot paths.
func Format(a uint32) string {
	var e Encoder
	return string(e.Encode(a))
}

// Parse converts canonical dotted-decimal text back to an address.
// Leading zeros, signs, whitespace and missing or extra octets are rejected,
// so Parse(Format(a)) == a for every a and Format(Parse(s)) == s for every
// accepted s.
func Parse(s string) (uint32, error) {
	var a uint32
	part, digits := 0, 0
	var val uint32

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			if digits > 0 && val == 0 {
				return 0, fmt.Errorf("%w: %q has a leading zero", ErrInvalidAddress, s)
			}
			val = val*10 + uint32(c-'0')
			digits++
			if digits > 3 || val > 255 {
				return 0, fmt.Errorf("%w: %q has an octet above 255", ErrInvalidAddress, s)
			}
		case c == '.':
			if digits == 0 || part == 3 {
				return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
			}
			a = a<<8 | val
			part++
			digits, val = 0, 0
		default:
			return 0, fmt.Errorf("%w: %q contains %q", ErrInvalidAddress, s, c)
		}
	}
	if part != 3 || digits == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return a<<8 | val, nil
}
