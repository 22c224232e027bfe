package sqlcheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIdentifier_Clean(t *testing.T) {
	for _, v := range []string{"", "users", "order_items", "public", "dbo", "analytics_2024"} {
		assert.Nil(t, CheckIdentifier("table", v), v)
	}
}

func TestCheckIdentifier_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantReason string
	}{
		{"injection payload", "'; DROP TABLE users--", "looks like SQL injection"},
		{"tautology", "1' OR '1'='1", "looks like SQL injection"},
		{"control characters", "users\x00", "contains control characters"},
		{"too long", strings.Repeat("a", MaxIdentifierLength+1), "longer than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CheckIdentifier("table", tt.value)
			require.NotNil(t, v)
			assert.Contains(t, v.Reason, tt.wantReason)
			assert.Equal(t, "table", v.Name)
			assert.True(t, strings.HasPrefix(v.Error(), "invalid table: "))
		})
	}

	v := CheckIdentifier("table", "'; DROP TABLE users--")
	require.NotNil(t, v)
	assert.NotEmpty(t, v.Fingerprint)
}

func TestCheckIdentifiers_FirstViolation(t *testing.T) {
	assert.Nil(t, CheckIdentifiers("database", "shop", "schema", "", "table", "orders"))

	v := CheckIdentifiers("database", "shop", "schema", "x\ty", "table", "'; DROP TABLE users--")
	require.NotNil(t, v)
	assert.Equal(t, "schema", v.Name)
}
