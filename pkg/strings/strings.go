package strings

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidType = errors.New("invalid type")

// UniqueStable returns the unique elements of s in order of their first occurrence.
func UniqueStable(s []string) []string {
	m := make(map[string]struct{}, len(s))
	ret := make([]string, 0, len(s))
	for _, v := range s {
		if _, ok := m[v]; ok {
			continue
		}
		m[v] = struct{}{}
		ret = append(ret, v)
	}
	return ret
}

// SplitList splits a comma separated list, trims the elements and drops the empty ones.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ret := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			ret = append(ret, p)
		}
	}
	return ret
}

// ToSlice converts a string, a comma separated string, a []string or a []interface{} of strings.
func ToSlice(v interface{}) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return SplitList(val), nil
	case []string:
		return val, nil
	case []interface{}:
		ret := make([]string, 0, len(val))
		for i, e := range val {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("cannot convert element[%v] of type %T to a string: %w", i, e, ErrInvalidType)
			}
			ret = append(ret, s)
		}
		return ret, nil
	}
	return nil, fmt.Errorf("cannot convert %T to []string: %w", v, ErrInvalidType)
}
