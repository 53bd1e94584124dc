package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resolvd-ai/resolvd/internal/domain"
)

// MockSource is a mock implementation of Source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Lookup(ctx context.Context, ticketID string) (Record, bool, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(Record), args.Bool(1), args.Error(2)
}

func testMapping(t *testing.T) *Mapping {
	t.Helper()
	mapping, err := NewMapping("status", map[string]string{
		"PAID_NOT_REFLECTED": "paid_not_reflected",
		"LOAN_APPROVED":      "loan_approved",
	})
	require.NoError(t, err)
	return mapping
}

func TestResolver_Resolve(t *testing.T) {
	source := new(MockSource)
	source.On("Lookup", mock.Anything, "3633261").
		Return(Record{"status": "PAID_NOT_REFLECTED"}, true, nil)

	resolver := NewResolver(source, testMapping(t))
	key := resolver.Resolve(context.Background(), "3633261")

	assert.Equal(t, domain.StatusKey("paid_not_reflected"), key)
	source.AssertExpectations(t)
}

func TestResolver_Resolve_TicketNotFound(t *testing.T) {
	source := new(MockSource)
	source.On("Lookup", mock.Anything, "404404").Return(nil, false, nil)

	resolver := NewResolver(source, testMapping(t))
	key := resolver.Resolve(context.Background(), "404404")

	assert.Equal(t, domain.StatusUnresolved, key)
}

func TestResolver_Resolve_LookupError(t *testing.T) {
	source := new(MockSource)
	source.On("Lookup", mock.Anything, "123").Return(nil, false, errors.New("backend down"))

	resolver := NewResolver(source, testMapping(t))
	key := resolver.Resolve(context.Background(), "123")

	// Lookup failures degrade, they never propagate.
	assert.Equal(t, domain.StatusUnresolved, key)
}

func TestResolver_Resolve_UnmappedValue(t *testing.T) {
	source := new(MockSource)
	source.On("Lookup", mock.Anything, "555").
		Return(Record{"status": "SOMETHING_NEW"}, true, nil)

	resolver := NewResolver(source, testMapping(t))
	key := resolver.Resolve(context.Background(), "555")

	assert.Equal(t, domain.StatusUnresolved, key)
}

func TestResolver_Resolve_MissingField(t *testing.T) {
	source := new(MockSource)
	source.On("Lookup", mock.Anything, "777").
		Return(Record{"priority": "high"}, true, nil)

	resolver := NewResolver(source, testMapping(t))
	key := resolver.Resolve(context.Background(), "777")

	assert.Equal(t, domain.StatusUnresolved, key)
}

func TestResolver_Resolve_EmptyTicketID(t *testing.T) {
	source := new(MockSource)

	resolver := NewResolver(source, testMapping(t))
	key := resolver.Resolve(context.Background(), "  ")

	assert.Equal(t, domain.StatusUnresolved, key)
	source.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestNopResolver(t *testing.T) {
	key := NopResolver{}.Resolve(context.Background(), "anything")
	assert.Equal(t, domain.StatusUnresolved, key)
}
