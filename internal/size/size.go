package size

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Binary multiples understood by Parse.
const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
)

// MalformedSizeError reports a literal that is not a valid size.
type MalformedSizeError struct {
	Literal string
	Reason  string
}

func (e *MalformedSizeError) Error() string {
	return "malformed size " + strconv.Quote(e.Literal) + ": " + e.Reason
}

// Parse returns the number of bytes denoted by literal.
func Parse(literal string) (int64, error) {
	if literal == "" {
		return 0, errors.WithStack(&MalformedSizeError{Literal: literal, Reason: "empty literal"})
	}
	if strings.ContainsAny(literal, " \t\r\n") {
		return 0, errors.WithStack(&MalformedSizeError{Literal: literal, Reason: "contains whitespace"})
	}

	digits, factor := literal, int64(1)
	switch literal[len(literal)-1] {
	case 'k', 'K':
		factor = KiB
	case 'm', 'M':
		factor = MiB
	case 'g', 'G':
		factor = GiB
	}
	if factor != 1 {
		digits = literal[:len(literal)-1]
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, errors.WithStack(&MalformedSizeError{Literal: literal, Reason: "not a base-10 integer"})
	}
	if n < 0 {
		return 0, errors.WithStack(&MalformedSizeError{Literal: literal, Reason: "negative size"})
	}
	if n > math.MaxInt64/factor {
		return 0, errors.WithStack(&MalformedSizeError{Literal: literal, Reason: "overflows int64"})
	}
	return n * factor, nil
}

// Value converts a configuration scalar into a byte count. Strings are parsed
// as size literals; integers are taken as bytes.
func Value(v any) (int64, error) {
	switch x := v.(type) {
	case string:
		return Parse(x)
	case int64:
		if x < 0 {
			return 0, errors.WithStack(&MalformedSizeError{Literal: strconv.FormatInt(x, 10), Reason: "negative size"})
		}
		return x, nil
	case int:
		return Value(int64(x))
	default:
		return 0, errors.WithStack(&MalformedSizeError{Literal: fmt.Sprint(v), Reason: "unsupported type"})
	}
}
