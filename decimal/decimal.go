// Package decimal implements a fixed-precision, non-negative decimal value
// backed by a uint64 magnitude. Go has no const-generic integer parameters,
// so the precision N is carried by a phantom type parameter P satisfying
// Prec rather than stored in the value itself: Decimal[P]{} is always a
// valid zero value at P's precision, with no risk of a mismatched "N field
// left at its Go zero value" the way a stored-precision design would have.
package decimal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxN is the largest precision representable by this type: u64::MAX has
// 20 decimal digits, so 10^19 is the largest power of ten that fits in a
// uint64, and any N above 19 would make the scale factor itself overflow.
const MaxN = 19

// Prec names a fixed count of fractional digits. Implementations are
// expected to be zero-sized types whose N() returns a compile-time
// constant; see the prec4 type used by the payments domain for N=4.
type Prec interface {
	N() uint8
}

// Decimal is a fixed-point value with P's precision, represented as a
// non-negative magnitude scaled by 10^P.N(). The zero value is zero.
type Decimal[P Prec] struct {
	mag uint64
}

// Reason identifies why a Decimal operation failed.
type Reason int

const (
	_ Reason = iota
	ErrMalformed
	ErrOverflow
	ErrUnderflow
	ErrPrecisionTooLarge
)

func (r Reason) String() string {
	switch r {
	case ErrMalformed:
		return "malformed decimal"
	case ErrOverflow:
		return "decimal overflow"
	case ErrUnderflow:
		return "decimal underflow"
	case ErrPrecisionTooLarge:
		return "precision exceeds MaxN"
	default:
		return "unknown decimal error"
	}
}

// Error reports why a Decimal construction or arithmetic operation failed.
type Error struct {
	Reason Reason
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Reason.String()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func newErr(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func prec[P Prec]() uint8 {
	var p P
	return p.N()
}

// frac10 returns 10^N for this Decimal's precision, panicking if the
// precision type itself is misconfigured above MaxN. A Prec implementation
// is a fixed, compile-time-authored zero-sized type, so this is a
// programmer error caught the first time the type is used, analogous to the
// static assertion the reference design performs at compile time.
func frac10[P Prec]() uint64 {
	n := prec[P]()
	if n > MaxN {
		panic(fmt.Sprintf("decimal: precision %d exceeds MaxN (%d)", n, MaxN))
	}
	return pow10(n)
}

func pow10(n uint8) uint64 {
	p := uint64(1)
	for i := uint8(0); i < n; i++ {
		p *= 10
	}
	return p
}

// MaxUint is the largest integer part representable at this precision.
func MaxUint[P Prec]() uint64 {
	return math.MaxUint64 / frac10[P]()
}

// MaxFrac is the largest fractional magnitude representable at this
// precision.
func MaxFrac[P Prec]() uint64 {
	return frac10[P]() - 1
}

// Max returns the largest value representable by Decimal[P].
func Max[P Prec]() Decimal[P] {
	return Decimal[P]{mag: math.MaxUint64}
}

// New builds a Decimal from separate integer and fractional parts. frac is
// left-aligned to N digits: if it has more digits than N it is rounded
// half-away-from-zero to N digits; if fewer, the caller is expected to have
// already scaled it (see Parse for the text-parsing variant, which performs
// this padding itself). Construction fails if uint or the rounded frac
// would not fit.
func New[P Prec](uint, frac uint64) (Decimal[P], error) {
	den := frac10[P]()

	switch {
	case frac == den:
		frac /= 10
	case frac > den:
		digits := uint8(1)
		for v := frac; v >= 10; v /= 10 {
			digits++
		}
		shift := int(digits) - int(prec[P]())
		if shift > 0 {
			n := pow10(uint8(shift))
			frac = uint64(math.Round(float64(frac) / float64(n)))
		}
	}

	if uint > MaxUint[P]() {
		return Decimal[P]{}, newErr(ErrOverflow, "integer part %d exceeds max %d", uint, MaxUint[P]())
	}
	if frac > MaxFrac[P]() {
		return Decimal[P]{}, newErr(ErrOverflow, "fractional part %d exceeds max %d", frac, MaxFrac[P]())
	}

	// uint <= MaxUint and frac <= MaxFrac individually fit, but their
	// combination can still overflow uint64 near the top of the range
	// (MaxUint.MaxFrac is not itself representable); catch that here rather
	// than silently wrapping.
	product := uint * den
	mag := product + frac
	if mag < product {
		return Decimal[P]{}, newErr(ErrOverflow, "%d.%d exceeds representable range", uint, frac)
	}

	return Decimal[P]{mag: mag}, nil
}

func (d Decimal[P]) split() (uint64, uint64) {
	den := frac10[P]()
	return d.mag / den, d.mag % den
}

// Parse reads a decimal from text in one of the forms "U", "U.", "U.F".
// Trailing zero digits in F are stripped before length classification; if
// the stripped F has at most N digits it is treated as the N-digit
// fraction with implicit trailing zeros, if it has more digits and starts
// with '0' it is extended by one digit and rounded half-away-from-zero down
// to N digits, and otherwise it is parsed directly and rounded as in New.
func Parse[P Prec](s string) (Decimal[P], error) {
	n := prec[P]()

	uintPart, fracPart, hasDot := strings.Cut(s, ".")
	if !hasDot {
		fracPart = ""
	}
	fracPart = strings.TrimRight(fracPart, "0")

	uintVal, err := strconv.ParseUint(uintPart, 10, 64)
	if err != nil {
		return Decimal[P]{}, newErr(ErrMalformed, "invalid integer part %q", uintPart)
	}

	var fracVal uint64
	switch {
	case fracPart == "":
		fracVal = 0
	case len(fracPart) <= int(n):
		v, err := strconv.ParseUint(fracPart, 10, 64)
		if err != nil {
			return Decimal[P]{}, newErr(ErrMalformed, "invalid fractional part %q", fracPart)
		}
		fracVal = v * pow10(n-uint8(len(fracPart)))
	case strings.HasPrefix(fracPart, "0"):
		extended := fracPart[:int(n)+1]
		v, err := strconv.ParseUint(extended, 10, 64)
		if err != nil {
			return Decimal[P]{}, newErr(ErrMalformed, "invalid fractional part %q", fracPart)
		}
		fracVal = uint64(math.Round(float64(v) / 10.0))
	default:
		v, err := strconv.ParseUint(fracPart, 10, 64)
		if err != nil {
			return Decimal[P]{}, newErr(ErrMalformed, "invalid fractional part %q", fracPart)
		}
		fracVal = v
	}

	return New[P](uintVal, fracVal)
}

// String renders the value compactly: no fractional part when zero,
// otherwise N fractional digits with trailing zeros stripped.
func (d Decimal[P]) String() string {
	uintPart, fracPart := d.split()
	if fracPart == 0 {
		return strconv.FormatUint(uintPart, 10)
	}

	n := int(prec[P]())
	frac := strings.TrimRight(fmt.Sprintf("%0*d", n, fracPart), "0")
	return fmt.Sprintf("%d.%s", uintPart, frac)
}

// Full renders the value with exactly N fractional digits, regardless of
// trailing zeros.
func (d Decimal[P]) Full() string {
	uintPart, fracPart := d.split()
	n := int(prec[P]())
	if n == 0 {
		return strconv.FormatUint(uintPart, 10)
	}
	return fmt.Sprintf("%d.%0*d", uintPart, n, fracPart)
}

// Add returns d + other, failing with ErrOverflow if the sum would not fit
// in a uint64 magnitude.
func (d Decimal[P]) Add(other Decimal[P]) (Decimal[P], error) {
	sum := d.mag + other.mag
	if sum < d.mag {
		return Decimal[P]{}, newErr(ErrOverflow, "%s + %s overflows", d, other)
	}
	return Decimal[P]{mag: sum}, nil
}

// Sub returns d - other, failing with ErrUnderflow if other exceeds d.
func (d Decimal[P]) Sub(other Decimal[P]) (Decimal[P], error) {
	if other.mag > d.mag {
		return Decimal[P]{}, newErr(ErrUnderflow, "%s - %s underflows", d, other)
	}
	return Decimal[P]{mag: d.mag - other.mag}, nil
}

// Cmp returns -1, 0 or 1 as d is less than, equal to, or greater than other.
func (d Decimal[P]) Cmp(other Decimal[P]) int {
	switch {
	case d.mag < other.mag:
		return -1
	case d.mag > other.mag:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether d is the zero value.
func (d Decimal[P]) IsZero() bool {
	return d.mag == 0
}
