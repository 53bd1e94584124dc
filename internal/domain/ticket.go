package domain

import (
	"fmt"
	"strings"
)

// StatusKey is the categorical label that narrows the knowledge search
// space for a ticket. It is derived from ticket metadata, never typed in
// by a caller directly.
type StatusKey string

// StatusUnresolved is returned by the metadata resolver when the ticket
// is missing from the metadata source or its status field does not map
// to any configured key. Callers degrade to a default key instead of
// failing.
const StatusUnresolved StatusKey = "unresolved"

// Ticket is the per-request input to resolution. Tickets are transient;
// nothing in the core persists them.
type Ticket struct {
	ID           string
	CategoryName string
	QueryText    string
}

// NewTicket creates a Ticket from raw caller input.
func NewTicket(id, categoryName, queryText string) *Ticket {
	return &Ticket{
		ID:           id,
		CategoryName: categoryName,
		QueryText:    queryText,
	}
}

// EffectiveQueryText returns the text to embed for this ticket: the
// query text when present, otherwise the category name. A ticket with a
// subject but no body is still resolvable.
func (t *Ticket) EffectiveQueryText() string {
	if q := strings.TrimSpace(t.QueryText); q != "" {
		return q
	}
	return strings.TrimSpace(t.CategoryName)
}

// ValidateTicket validates a Ticket instance.
func ValidateTicket(t *Ticket) error {
	if t == nil {
		return fmt.Errorf("ticket cannot be nil")
	}

	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("ticket ID is required")
	}

	if strings.TrimSpace(t.CategoryName) == "" {
		return fmt.Errorf("ticket CategoryName is required")
	}

	return nil
}
