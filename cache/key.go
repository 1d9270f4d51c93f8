package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mytheresa/storefront/internal/result"
)

const (
	// KeyPrefix namespaces every key written by this package.
	KeyPrefix = "cache"
	// KeySeparator defines the delimiter used between cache key segments.
	KeySeparator = ":"
)

// BuildKey returns the cache key of a function call.
func BuildKey(name string, input any) (string, error) {
	encoded, err := CanonicalJSON(input)
	if err != nil {
		return "", fmt.Errorf("cache key for %s: %w", name, err)
	}
	return strings.Join([]string{KeyPrefix, name, encoded}, KeySeparator), nil
}

// FunctionPrefix returns the prefix shared by every key of the named function.
func FunctionPrefix(name string) string {
	return KeyPrefix + KeySeparator + name + KeySeparator
}

// CanonicalJSON encodes v as JSON with object keys sorted recursively.
// A nil input encodes as the empty string.
func CanonicalJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}

	raw, err := marshalUnescaped(v)
	if err != nil {
		return "", err
	}

	// Decoding into interface{} turns every object into a map, and
	// encoding/json writes map keys in sorted order.
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return "", err
	}

	canonical, err := marshalUnescaped(generic)
	if err != nil {
		return "", err
	}
	return string(canonical), nil
}

// marshalUnescaped is json.Marshal without the HTML escaping of &, < and >.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func keyFor(name string, input any) result.Result[string] {
	key, err := BuildKey(name, input)
	if err != nil {
		return result.Err[string](err)
	}
	return result.Ok(key)
}
