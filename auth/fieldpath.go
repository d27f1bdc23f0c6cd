package auth

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ParseFieldPath splits a field key into path segments.
//
// Both bracket and dotted notation are accepted and may be mixed:
// "user[username]", "user.username" and "user[profile].name" all address
// nested values. Inside brackets a dot is part of the segment name.
func ParseFieldPath(field string) ([]string, error) {
	if field == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedFieldPath)
	}

	var (
		segments   []string
		cur        strings.Builder
		inBracket  bool
		afterClose bool
	)
	fail := func(pos int) ([]string, error) {
		return nil, fmt.Errorf("%w: %q at offset %d", ErrMalformedFieldPath, field, pos)
	}

	for i := 0; i < len(field); i++ {
		c := field[i]
		switch {
		case c == '[':
			if inBracket {
				return fail(i)
			}
			if !afterClose {
				if cur.Len() == 0 {
					return fail(i)
				}
				segments = append(segments, cur.String())
				cur.Reset()
			}
			inBracket = true
			afterClose = false
		case c == ']':
			if !inBracket || cur.Len() == 0 {
				return fail(i)
			}
			segments = append(segments, cur.String())
			cur.Reset()
			inBracket = false
			afterClose = true
		case c == '.' && !inBracket:
			if afterClose {
				afterClose = false
				// a segment must follow
				if i == len(field)-1 {
					return fail(i)
				}
				continue
			}
			if cur.Len() == 0 {
				return fail(i)
			}
			segments = append(segments, cur.String())
			cur.Reset()
		default:
			if afterClose {
				return fail(i)
			}
			cur.WriteByte(c)
		}
	}

	if inBracket {
		return fail(len(field))
	}
	if !afterClose {
		if cur.Len() == 0 {
			return fail(len(field))
		}
		segments = append(segments, cur.String())
	}
	return segments, nil
}

// Lookup resolves field against src and returns its value as a string.
//
// A key equal to the whole field name wins over nested addressing, so flat
// form keys such as "user[username]" resolve directly. A falsy literal value
// counts as missing and nested addressing is tried instead. Otherwise the field
// is parsed with ParseFieldPath and walked through nested maps and slices.
//
// Lookup fails closed: a malformed path, a missing key, a scalar reached
// before the end of the path or a container at the end all report false.
// Falsy values (nil, "", false, numeric zero) also report false.
func Lookup(src any, field string) (string, bool) {
	if v, ok := child(src, field); ok {
		if s, ok := scalarString(v); ok {
			return s, true
		}
	}

	path, err := ParseFieldPath(field)
	if err != nil {
		return "", false
	}

	node := src
	for _, seg := range path {
		next, ok := child(node, seg)
		if !ok {
			return "", false
		}
		node = next
	}
	return scalarString(node)
}

// LookupFirst returns the value from the first source that yields one.
func LookupFirst(field string, sources ...any) (string, bool) {
	for _, src := range sources {
		if v, ok := Lookup(src, field); ok {
			return v, true
		}
	}
	return "", false
}

func child(node any, key string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		v, ok := n[key]
		return v, ok
	case map[string]string:
		v, ok := n[key]
		return v, ok
	case url.Values:
		return first(n[key])
	case map[string][]string:
		return first(n[key])
	case []any:
		i, ok := index(key, len(n))
		if !ok {
			return nil, false
		}
		return n[i], true
	case []string:
		i, ok := index(key, len(n))
		if !ok {
			return nil, false
		}
		return n[i], true
	}
	return nil, false
}

func first(values []string) (any, bool) {
	if len(values) == 0 {
		return nil, false
	}
	return values[0], true
}

func index(key string, n int) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// scalarString renders a leaf value. Falsy leaves count as missing.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case bool:
		if !x {
			return "", false
		}
		return "true", true
	case int:
		return intString(int64(x))
	case int32:
		return intString(int64(x))
	case int64:
		return intString(x)
	case uint:
		return uintString(uint64(x))
	case uint32:
		return uintString(uint64(x))
	case uint64:
		return uintString(x)
	case float32:
		return floatString(float64(x), 32)
	case float64:
		return floatString(x, 64)
	case json.Number:
		f, err := x.Float64()
		if err != nil || f == 0 || math.IsNaN(f) {
			return "", false
		}
		return x.String(), true
	}
	return "", false
}

func intString(i int64) (string, bool) {
	if i == 0 {
		return "", false
	}
	return strconv.FormatInt(i, 10), true
}

func uintString(u uint64) (string, bool) {
	if u == 0 {
		return "", false
	}
	return strconv.FormatUint(u, 10), true
}

func floatString(f float64, bits int) (string, bool) {
	if f == 0 || math.IsNaN(f) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, bits), true
}
