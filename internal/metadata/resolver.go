package metadata

import (
	"context"
	"log"
	"strings"

	"github.com/resolvd-ai/resolvd/internal/domain"
)

// Resolver maps a ticket ID to a StatusKey: one lookup against the
// metadata source, one pass through the enumeration table. Lookup
// misses and unmapped values degrade to StatusUnresolved instead of
// failing, since metadata completeness cannot be guaranteed; callers
// substitute their configured default key for unresolved tickets.
type Resolver struct {
	source  Source
	mapping *Mapping
}

// NewResolver creates a Resolver over the given source and mapping.
func NewResolver(source Source, mapping *Mapping) *Resolver {
	return &Resolver{
		source:  source,
		mapping: mapping,
	}
}

// Resolve returns the status key for the ticket, or StatusUnresolved.
// It never errors; degraded lookups are logged and absorbed here.
func (r *Resolver) Resolve(ctx context.Context, ticketID string) domain.StatusKey {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return domain.StatusUnresolved
	}

	record, found, err := r.source.Lookup(ctx, ticketID)
	if err != nil {
		log.Printf("metadata lookup failed for ticket %s: %v", ticketID, err)
		return domain.StatusUnresolved
	}
	if !found {
		log.Printf("no metadata row for ticket %s", ticketID)
		return domain.StatusUnresolved
	}

	raw := record.Field(r.mapping.Field())
	key, ok := r.mapping.StatusKeyFor(raw)
	if !ok {
		log.Printf("ticket %s has unmapped %s value %q", ticketID, r.mapping.Field(), raw)
		return domain.StatusUnresolved
	}
	return key
}
