package validation

import (
	"sort"
	"time"
)

// Accessors below assume the record already passed Validate; a missing or
// mistyped field yields the zero value.

func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

func (r Record) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

func (r Record) Time(field string) time.Time {
	t, _ := ParseDate(r[field])
	return t
}

func (r Record) Strings(field string) []string {
	items, _ := r[field].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys(r Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
