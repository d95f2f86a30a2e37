package canonical

import "strings"

// Record is a raw row from a legacy source system, keyed by the source's own
// column names. Values arrive as text regardless of the source data type.
type Record map[string]string

// Get returns the trimmed value for a key.
func (r Record) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// Has reports whether the record carries a non-empty, non-null value.
func (r Record) Has(key string) bool {
	value := r.Get(key)
	if value == "" {
		return false
	}
	return !nullTokens[strings.ToUpper(value)]
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
