package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier_MySQL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple table name",
			input:    "records",
			expected: "`records`",
		},
		{
			name:     "Table with underscore",
			input:    "game_records",
			expected: "`game_records`",
		},
		{
			name:     "Mixed case",
			input:    "MyTable",
			expected: "`MyTable`",
		},
		{
			name:     "Numeric characters",
			input:    "table123",
			expected: "`table123`",
		},
		{
			name:     "Single backtick escaped",
			input:    "my`table",
			expected: "`my``table`",
		},
		{
			name:     "Multiple backticks escaped",
			input:    "ta`bl`e",
			expected: "`ta``bl``e`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DialectMySQL.QuoteIdentifier(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestQuoteIdentifier_ANSI(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		input    string
		expected string
	}{
		{
			name:     "Postgres simple",
			dialect:  DialectPostgres,
			input:    "records",
			expected: `"records"`,
		},
		{
			name:     "SQLite simple",
			dialect:  DialectSQLite,
			input:    "records",
			expected: `"records"`,
		},
		{
			name:     "Postgres embedded quote escaped",
			dialect:  DialectPostgres,
			input:    `my"table`,
			expected: `"my""table"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.QuoteIdentifier(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "?", DialectMySQL.Placeholder(1))
	assert.Equal(t, "?", DialectMySQL.Placeholder(3))
	assert.Equal(t, "?", DialectSQLite.Placeholder(1))
	assert.Equal(t, "$1", DialectPostgres.Placeholder(1))
	assert.Equal(t, "$2", DialectPostgres.Placeholder(2))
}

func TestIsValidIdentifier_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Simple name", input: "records"},
		{name: "With underscore", input: "game_records"},
		{name: "Mixed case", input: "MyTable"},
		{name: "Numeric", input: "table123"},
		{name: "Only underscores", input: "___"},
		{name: "Uppercase", input: "RECORDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsValidIdentifier(tt.input))
		})
	}
}

func TestIsValidIdentifier_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Empty string", input: ""},
		{name: "With space", input: "my table"},
		{name: "With hyphen", input: "my-table"},
		{name: "With dot", input: "db.table"},
		{name: "With backtick", input: "my`table"},
		{name: "With special chars", input: "table@123"},
		{name: "SQL injection attempt", input: "records; DROP TABLE records--"},
		{name: "With dollar sign", input: "table$name"},
		{name: "With parentheses", input: "table(1)"},
		{name: "With quotes", input: "table'name"},
		{name: "With asterisk", input: "table*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, IsValidIdentifier(tt.input))
		})
	}
}

func TestQuoteIdentifierSafe_Valid(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		input    string
		expected string
	}{
		{
			name:     "MySQL simple",
			dialect:  DialectMySQL,
			input:    "records",
			expected: "`records`",
		},
		{
			name:     "Postgres simple",
			dialect:  DialectPostgres,
			input:    "records",
			expected: `"records"`,
		},
		{
			name:     "With underscore",
			dialect:  DialectSQLite,
			input:    "game_records",
			expected: `"game_records"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.dialect.QuoteIdentifierSafe(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestQuoteIdentifierSafe_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Empty string", input: ""},
		{name: "With space", input: "my table"},
		{name: "With hyphen", input: "my-table"},
		{name: "With backtick", input: "my`table"},
		{name: "SQL injection", input: "records; DROP TABLE records--"},
		{name: "With special chars", input: "table@name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DialectMySQL.QuoteIdentifierSafe(tt.input)
			assert.Error(t, err)
			assert.Empty(t, result)
			assert.IsType(t, &InvalidIdentifierError{}, err)
			assert.Contains(t, err.Error(), "invalid identifier")
			assert.Contains(t, err.Error(), tt.input)
		})
	}
}

func TestInvalidIdentifierError_Error(t *testing.T) {
	err := &InvalidIdentifierError{Name: "bad@table"}
	expected := "invalid identifier: bad@table (must contain only alphanumeric characters and underscores)"
	assert.Equal(t, expected, err.Error())
}
