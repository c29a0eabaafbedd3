package logic

import (
	"math"
	"reflect"
)

// Truthy coerces a rule result to a boolean. nil, false, numeric zero, NaN
// and the empty string are falsy; every other value, including empty slices
// and maps, is truthy.
func Truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != ""
	}
	if n, ok := toNumber(value); ok {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

// lookup reads field as a flat key. Dots are part of the key, never a path.
func lookup(data map[string]any, field string) (any, bool) {
	if len(data) == 0 || field == "" {
		return nil, false
	}
	v, ok := data[field]
	return v, ok
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// strictEqual mirrors === over decoded JSON values. Composite values have
// reference identity in the browser, so they never compare equal here.
func strictEqual(a, b any) bool {
	na, aNumeric := toNumber(a)
	nb, bNumeric := toNumber(b)
	if aNumeric || bNumeric {
		return aNumeric && bNumeric && na == nb
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

// sameValueZero is strictEqual except NaN matches NaN, as Array.includes does.
func sameValueZero(a, b any) bool {
	na, aNumeric := toNumber(a)
	nb, bNumeric := toNumber(b)
	if aNumeric && bNumeric && math.IsNaN(na) && math.IsNaN(nb) {
		return true
	}
	return strictEqual(a, b)
}

func asSequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		// byte slices are payloads, not sequences
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// canonical converts Go values into the shapes encoding/json produces when
// decoding into any, so built rules compare equal to their decoded form.
func canonical(value any) any {
	switch v := value.(type) {
	case nil, string, bool, float64:
		return v
	case Rule:
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = canonical(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = canonical(item)
		}
		return out
	}

	if n, ok := toNumber(value); ok {
		return n
	}
	if seq, ok := asSequence(value); ok {
		out := make([]any, len(seq))
		for i, item := range seq {
			out[i] = canonical(item)
		}
		return out
	}
	return value
}
