package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

type Kwarg struct {
	Key   string
	Value interface{}
}

// Kwargs is an ordered list of keyword arguments.
type Kwargs []Kwarg

// KwargsFromMap orders the map by key.
func KwargsFromMap(m map[string]interface{}) Kwargs {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kwargs := make(Kwargs, 0, len(keys))
	for _, k := range keys {
		kwargs = append(kwargs, Kwarg{Key: k, Value: m[k]})
	}
	return kwargs
}

// ParseQuery parses a raw URL query keeping the order of the pairs.
func ParseQuery(rawQuery string) (Kwargs, error) {
	var kwargs Kwargs
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("invalid key '%v': %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value of '%v': %w", key, err)
		}
		kwargs = append(kwargs, Kwarg{Key: key, Value: value})
	}
	return kwargs, nil
}

// Get returns the last value of the key.
func (k Kwargs) Get(key string) (interface{}, bool) {
	for i := len(k) - 1; i >= 0; i-- {
		if k[i].Key == key {
			return k[i].Value, true
		}
	}
	return nil, false
}

// Without returns the kwargs without the keys.
func (k Kwargs) Without(keys ...string) Kwargs {
	out := make(Kwargs, 0, len(k))
	for _, kw := range k {
		skip := false
		for _, key := range keys {
			if kw.Key == key {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, kw)
		}
	}
	return out
}
