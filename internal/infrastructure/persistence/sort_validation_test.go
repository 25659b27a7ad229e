package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE cash_sessions;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", "opened_at", "opened_at"},
		{"valid field returns field", "difference", "opened_at", "difference"},
		{"invalid field returns default", "counted_by", "opened_at", "opened_at"},
		{"case sensitive", "STATUS", "opened_at", "opened_at"},
		{"whitespace around valid field", "  status  ", "opened_at", "status"},
		{"field with spaces injection", "status users", "opened_at", "opened_at"},
		{"empty default with invalid field", "invalid", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, CashSessionSortFields, tt.defaultField))
		})
	}
}

func TestSortFieldWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"CashRegisterSortFields": CashRegisterSortFields,
		"CashSessionSortFields":  CashSessionSortFields,
		"LedgerEntrySortFields":  LedgerEntrySortFields,
		"InstallmentSortFields":  InstallmentSortFields,
		"ExpenseSortFields":      ExpenseSortFields,
		"CashTransferSortFields": CashTransferSortFields,
	}
	for name, whitelist := range whitelists {
		assert.True(t, whitelist["created_at"], "%s should allow created_at", name)
		for field := range whitelist {
			assert.NotContains(t, field, " ", name)
		}
	}
}

func TestSQLInjectionPrevention(t *testing.T) {
	payloads := []string{
		"id; DROP TABLE cash_ledger_entries;--",
		"id' OR '1'='1",
		"id UNION SELECT * FROM cash_sessions",
		"CASE WHEN 1=1 THEN id ELSE amount END",
		"id\n; DROP TABLE expenses",
	}

	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			assert.Equal(t, "created_at", ValidateSortField(payload, LedgerEntrySortFields, "created_at"))
			assert.Equal(t, "DESC", ValidateSortOrder(payload))
		})
	}
}
