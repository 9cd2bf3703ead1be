package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = ParseID(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, invalid := range []string{"", "abc", "1.5", "0", "-3"} {
		_, err := ParseID(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("reason", "duplicate"))
	assert.Error(t, ValidateRequired("reason", ""))
	assert.Error(t, ValidateRequired("reason", "   "))
}

func TestValidateMaxLength(t *testing.T) {
	assert.NoError(t, ValidateMaxLength("notes", "short", 10))
	assert.Error(t, ValidateMaxLength("notes", "this is far too long", 10))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "clean", SanitizeString("  clean  "))
	assert.Equal(t, "nonulls", SanitizeString("no\x00nulls"))
}
