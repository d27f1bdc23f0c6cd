package auth

import (
	"encoding/json"
	"errors"
	"net/url"
	"reflect"
	"testing"
)

func TestParseFieldPath(t *testing.T) {
	tests := []struct {
		field string
		want  []string
	}{
		{"username", []string{"username"}},
		{"user[username]", []string{"user", "username"}},
		{"user.username", []string{"user", "username"}},
		{"a[b][c]", []string{"a", "b", "c"}},
		{"a[b].c", []string{"a", "b", "c"}},
		{"a.b[c]", []string{"a", "b", "c"}},
		{"user[first.name]", []string{"user", "first.name"}},
		{"items[0]", []string{"items", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := ParseFieldPath(tt.field)
			if err != nil {
				t.Fatalf("ParseFieldPath(%q) error = %v", tt.field, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFieldPath(%q) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestParseFieldPath_Malformed(t *testing.T) {
	fields := []string{
		"",
		"user[",
		"user]",
		"user[]",
		"[user]",
		"user[a]b",
		"user[[a]]",
		"a..b",
		".a",
		"a.",
		"a[b].",
		"a.[b]",
	}

	for _, field := range fields {
		t.Run(field, func(t *testing.T) {
			_, err := ParseFieldPath(field)
			if !errors.Is(err, ErrMalformedFieldPath) {
				t.Errorf("ParseFieldPath(%q) error = %v, want ErrMalformedFieldPath", field, err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	tree := map[string]any{
		"username": "johndoe",
		"user": map[string]any{
			"username": "janedoe",
			"profile":  map[string]any{"name": "Jane"},
		},
		"flat":   map[string]string{"key": "value"},
		"items":  []any{"first", "second"},
		"tags":   []string{"a", "b"},
		"count":  42,
		"ratio":  0.5,
		"zero":   0,
		"yes":    true,
		"no":     false,
		"empty":  "",
		"null":   nil,
		"number": json.Number("7"),
	}

	tests := []struct {
		name   string
		field  string
		want   string
		wantOK bool
	}{
		{"top level", "username", "johndoe", true},
		{"bracket nested", "user[username]", "janedoe", true},
		{"dotted nested", "user.username", "janedoe", true},
		{"deep nested", "user[profile][name]", "Jane", true},
		{"string map", "flat[key]", "value", true},
		{"slice index", "items[1]", "second", true},
		{"string slice index", "tags.0", "a", true},
		{"integer", "count", "42", true},
		{"float", "ratio", "0.5", true},
		{"json number", "number", "7", true},
		{"true", "yes", "true", true},
		{"missing key", "password", "", false},
		{"missing nested key", "user[password]", "", false},
		{"scalar before end", "username[first]", "", false},
		{"container at end", "user", "", false},
		{"slice out of range", "items[5]", "", false},
		{"slice bad index", "items[x]", "", false},
		{"zero is missing", "zero", "", false},
		{"false is missing", "no", "", false},
		{"empty string is missing", "empty", "", false},
		{"nil is missing", "null", "", false},
		{"malformed path", "user[", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(tree, tt.field)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.field, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLookup_LiteralKey(t *testing.T) {
	nested := map[string]any{"name": "nested"}

	tests := []struct {
		name   string
		tree   map[string]any
		field  string
		want   string
		wantOK bool
	}{
		{"literal wins", map[string]any{"user.name": "flat", "user": nested}, "user.name", "flat", true},
		{"literal bracket key", map[string]any{"user[name]": "flat", "user": nested}, "user[name]", "flat", true},
		{"empty literal falls through", map[string]any{"user.name": "", "user": nested}, "user.name", "nested", true},
		{"nil literal falls through", map[string]any{"user[name]": nil, "user": nested}, "user[name]", "nested", true},
		{"empty literal without nested value", map[string]any{"user.name": ""}, "user.name", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(tt.tree, tt.field)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.field, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLookup_Sources(t *testing.T) {
	t.Run("nil source", func(t *testing.T) {
		if _, ok := Lookup(nil, "username"); ok {
			t.Error("Lookup(nil) should report no value")
		}
	})

	t.Run("nil map", func(t *testing.T) {
		var m map[string]any
		if _, ok := Lookup(m, "username"); ok {
			t.Error("Lookup(nil map) should report no value")
		}
	})

	t.Run("url values", func(t *testing.T) {
		values := url.Values{"user[username]": {"johndoe", "ignored"}}
		got, ok := Lookup(values, "user[username]")
		if !ok || got != "johndoe" {
			t.Errorf("Lookup() = (%q, %v), want (johndoe, true)", got, ok)
		}
	})

	t.Run("literal key wins", func(t *testing.T) {
		src := map[string]any{
			"user.name": "literal",
			"user":      map[string]any{"name": "nested"},
		}
		got, _ := Lookup(src, "user.name")
		if got != "literal" {
			t.Errorf("Lookup() = %q, want literal", got)
		}
	})
}

func TestLookupFirst(t *testing.T) {
	body := map[string]any{"username": "", "challenge": "from-body"}
	query := map[string]any{"username": "from-query", "challenge": "ignored"}

	tests := []struct {
		field  string
		want   string
		wantOK bool
	}{
		{"username", "from-query", true},
		{"challenge", "from-body", true},
		{"signature", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := LookupFirst(tt.field, body, query)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("LookupFirst(%q) = (%q, %v), want (%q, %v)", tt.field, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
