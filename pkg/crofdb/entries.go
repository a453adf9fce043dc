package crofdb

import "sort"

// Entries is a key/value mapping exactly as decoded from the server.
// Values are usually strings, but the representation of missing keys is
// server-defined and left untouched.
type Entries map[string]any

// String returns the value for key when it is a string.
func (e Entries) String(key string) (string, bool) {
	v, ok := e[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Strings returns the string-valued entries.
func (e Entries) Strings() map[string]string {
	out := make(map[string]string, len(e))
	for k, v := range e {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// Keys returns the entry names in sorted order.
func (e Entries) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
