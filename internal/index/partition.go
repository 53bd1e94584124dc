package index

import (
	"regexp"
	"strings"

	"github.com/resolvd-ai/resolvd/internal/domain"
)

// PartitionKey identifies one searchable subdivision of the knowledge
// index: one response category narrowed to one status key.
type PartitionKey struct {
	Category  string
	StatusKey domain.StatusKey
}

var (
	nonAlnum    = regexp.MustCompile(`[^a-z0-9_]+`)
	underscores = regexp.MustCompile(`_+`)
)

// SanitizeName lowercases, collapses every non-alphanumeric run to a
// single underscore, and trims leading/trailing underscores. Category
// and status-key names pass through this before they form a store
// partition name, so "Predisbursal_Loan_Query IM+ instances" and its
// already-sanitized form address the same partition.
func SanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = nonAlnum.ReplaceAllString(name, "_")
	name = underscores.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// PartitionName builds the stable store-level name for a partition:
// "<category>__<status_key>", both parts sanitized. Overrides remap a
// sanitized category to an alternate name, for stores whose identifier
// length limits truncate long category names.
func PartitionName(key PartitionKey, overrides map[string]string) string {
	category := SanitizeName(key.Category)
	if replacement, ok := overrides[category]; ok {
		category = replacement
	}
	return category + "__" + SanitizeName(string(key.StatusKey))
}
