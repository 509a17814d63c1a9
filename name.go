package sweep

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

//////
// Naming.
//////

// Style selects how Name joins parameters.
type Style int

const (
	// Compact renders "a=1,b=2". Used for output directories.
	Compact Style = iota

	// Spaced renders "a = 1, b = 2". Used for logs and failure reports.
	Spaced
)

// illegalPathChars are replaced by '_' in rendered strings, along with
// control characters.
const illegalPathChars = `<>:"/\|?*`

// Name renders p as a canonical string.
//
// Both styles share FormatValue, so a compact directory name and a spaced log
// line always agree on values.
//
// Returns:
//   - string: the rendering, empty for an empty list
//   - error: ErrValueFormat if a value has no canonical rendering
func Name(p Params, style Style) (string, error) {
	assign, sep := "=", ","
	if style == Spaced {
		assign, sep = " = ", ", "
	}

	var b strings.Builder

	for i, param := range p {
		value, err := FormatValue(param.Value)
		if err != nil {
			return "", fmt.Errorf("parameter %q: %w", param.Name, err)
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(Sanitize(param.Name))
		b.WriteString(assign)
		b.WriteString(value)
	}

	return b.String(), nil
}

// OutputDir composes the output directory of a unit: root joined with the
// compact name of common followed by task.
func OutputDir(root string, common, task Params) (string, error) {
	all := make(Params, 0, len(common)+len(task))
	all = append(all, common...)
	all = append(all, task...)

	name, err := Name(all, Compact)
	if err != nil {
		return "", err
	}

	return filepath.Join(root, name), nil
}

// FormatValue renders a single parameter value.
//
// Rules:
//   - Range: U(min,max)
//   - string: Sanitize'd copy
//   - NamedFunc: its name
//   - integers and floats: shortest decimal representation
//   - bool: 1 or 0
//   - nil, empty Enum or empty slice: []
//
// Any other value returns ErrValueFormat.
func FormatValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "[]", nil
	case Range:
		return "U(" + formatNumber(x.Min()) + "," + formatNumber(x.Max()) + ")", nil
	case string:
		return Sanitize(x), nil
	case NamedFunc:
		return Sanitize(x.Name), nil
	case bool:
		if x {
			return "1", nil
		}

		return "0", nil
	case int:
		return formatNumber(x), nil
	case int8:
		return formatNumber(x), nil
	case int16:
		return formatNumber(x), nil
	case int32:
		return formatNumber(x), nil
	case int64:
		return formatNumber(x), nil
	case uint:
		return formatNumber(x), nil
	case uint8:
		return formatNumber(x), nil
	case uint16:
		return formatNumber(x), nil
	case uint32:
		return formatNumber(x), nil
	case uint64:
		return formatNumber(x), nil
	case float32:
		return formatNumber(x), nil
	case float64:
		return formatNumber(x), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		if rv.Len() == 0 {
			return "[]", nil
		}
	}

	return "", fmt.Errorf("%w: %T (%v)", ErrValueFormat, v, v)
}

// Sanitize replaces characters that are illegal in file paths, and control
// characters, by '_'. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || strings.ContainsRune(illegalPathChars, r) {
			return '_'
		}

		return r
	}, s)
}

// formatNumber renders integers in base 10 and floats in their shortest
// representation.
func formatNumber[T constraints.Integer | constraints.Float](v T) string {
	switch x := any(v).(type) {
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case uint, uint8, uint16, uint32, uint64, uintptr:
		return strconv.FormatUint(uint64(v), 10)
	default:
		return strconv.FormatInt(int64(v), 10)
	}
}

// toFloat converts a numeric parameter value to float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}

	return 0, false
}
