package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already clean", "paid_not_reflected", "paid_not_reflected"},
		{"mixed case", "Predisbursal_Loan_Query", "predisbursal_loan_query"},
		{"spaces and symbols", "Predisbursal_Loan_Query IM+ instances", "predisbursal_loan_query_im_instances"},
		{"collapses runs", "a  -  b", "a_b"},
		{"trims edges", "  --weird-- ", "weird"},
		{"digits survive", "Tier 2 Support", "tier_2_support"},
		{"empty", "", ""},
		{"only symbols", "+++", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}

func TestSanitizeName_Idempotent(t *testing.T) {
	once := SanitizeName("Predisbursal_Loan_Query IM+ instances")
	assert.Equal(t, once, SanitizeName(once))
}

func TestPartitionName(t *testing.T) {
	key := PartitionKey{Category: "Predisbursal_Loan_Query", StatusKey: "paid_not_reflected"}
	assert.Equal(t, "predisbursal_loan_query__paid_not_reflected", PartitionName(key, nil))
}

func TestPartitionName_Overrides(t *testing.T) {
	overrides := map[string]string{
		"predisbursal_loan_query": "pdq",
	}
	key := PartitionKey{Category: "Predisbursal_Loan_Query", StatusKey: "paid_not_reflected"}
	assert.Equal(t, "pdq__paid_not_reflected", PartitionName(key, overrides))

	// Categories without an override sanitize as usual.
	other := PartitionKey{Category: "Card Issues", StatusKey: "blocked"}
	assert.Equal(t, "card_issues__blocked", PartitionName(other, overrides))
}
