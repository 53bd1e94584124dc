package metadata

import (
	"fmt"
	"strings"

	"github.com/resolvd-ai/resolvd/internal/domain"
)

// Mapping is the finite value-to-StatusKey enumeration for one
// designated metadata field. The field name and the table are product
// configuration, not code; the mapping is validated once at load time
// instead of string-matched ad hoc per call.
type Mapping struct {
	field  string
	values map[string]domain.StatusKey
}

// NewMapping builds and validates a Mapping. Raw values are normalized
// (trimmed, lowercased) before use; two raw values that collide after
// normalization but target different status keys are rejected as
// ambiguous.
func NewMapping(field string, values map[string]string) (*Mapping, error) {
	if strings.TrimSpace(field) == "" {
		return nil, fmt.Errorf("%w: designated field name is empty", domain.ErrInvalidStatusMapping)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: enumeration table is empty", domain.ErrInvalidStatusMapping)
	}

	normalized := make(map[string]domain.StatusKey, len(values))
	for raw, key := range values {
		nraw := normalizeValue(raw)
		if nraw == "" {
			return nil, fmt.Errorf("%w: empty raw value", domain.ErrInvalidStatusMapping)
		}
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: raw value %q maps to an empty status key", domain.ErrInvalidStatusMapping, raw)
		}
		statusKey := domain.StatusKey(strings.TrimSpace(key))
		if existing, ok := normalized[nraw]; ok && existing != statusKey {
			return nil, fmt.Errorf("%w: value %q maps ambiguously to %q and %q",
				domain.ErrInvalidStatusMapping, nraw, existing, statusKey)
		}
		normalized[nraw] = statusKey
	}

	return &Mapping{field: field, values: normalized}, nil
}

// Field is the designated metadata field this mapping reads.
func (m *Mapping) Field() string {
	return m.field
}

// StatusKeyFor maps a raw field value to its status key. The second
// return is false when the value is not in the enumeration.
func (m *Mapping) StatusKeyFor(raw string) (domain.StatusKey, bool) {
	key, ok := m.values[normalizeValue(raw)]
	return key, ok
}

func normalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func normalizeFieldName(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
