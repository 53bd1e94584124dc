// Package metadata maps ticket identifiers to status keys through an
// externally supplied tabular metadata source and a configured
// value-to-key enumeration table.
package metadata

import "context"

// Record is one row from the metadata source: descriptive field names
// mapped to raw values. Field names are matched case-insensitively by
// consumers.
type Record map[string]string

// Source is the read-only lookup contract over the metadata table. The
// second return distinguishes "ticket not present" from a real error.
type Source interface {
	Lookup(ctx context.Context, ticketID string) (Record, bool, error)
}

// Field returns the record's value for the given field name,
// case-insensitively. Missing fields return an empty string.
func (r Record) Field(name string) string {
	if v, ok := r[name]; ok {
		return v
	}
	lower := normalizeFieldName(name)
	for k, v := range r {
		if normalizeFieldName(k) == lower {
			return v
		}
	}
	return ""
}
