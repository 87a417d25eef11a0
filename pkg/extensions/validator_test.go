package extensions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFields_UnknownDefinition(t *testing.T) {
	_, err := ValidateFields(9999, map[string]any{})
	assert.Error(t, err)
}

func TestValidateFields_Org(t *testing.T) {
	t.Run("valid fields", func(t *testing.T) {
		result, err := ValidateFields(OrgID, map[string]any{
			"name":      "Acme Corporation",
			"employees": float64(120),
		})
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("unknown field", func(t *testing.T) {
		result, err := ValidateFields(OrgID, map[string]any{
			"stock_price": 12.5,
		})
		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "stock_price", result.Errors[0].Field)
		assert.Equal(t, "unknown field", result.Errors[0].Message)
	})

	t.Run("type mismatch", func(t *testing.T) {
		result, err := ValidateFields(OrgID, map[string]any{
			"name": 42,
		})
		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "name", result.Errors[0].Field)
	})

	t.Run("nil values pass", func(t *testing.T) {
		result, err := ValidateFields(OrgID, map[string]any{
			"name": nil,
		})
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})
}

func TestValidateFields_IntegerAcceptsWholeFloat(t *testing.T) {
	// json decoding produces float64 for all numbers.
	result, err := ValidateFields(OrgID, map[string]any{"employees": float64(30)})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = ValidateFields(OrgID, map[string]any{"employees": 30.5})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidateFields_BooleanField(t *testing.T) {
	result, err := ValidateFields(PersonID, map[string]any{"is_independent": true})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = ValidateFields(PersonID, map[string]any{"is_independent": "yes"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidateFields_FieldlessExtension(t *testing.T) {
	def, err := DefinitionByID(PhilanthropyID)
	require.NoError(t, err)
	require.False(t, def.HasFields())

	t.Run("empty field map is fine", func(t *testing.T) {
		result, err := ValidateFields(PhilanthropyID, nil)
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("any fields are rejected", func(t *testing.T) {
		result, err := ValidateFields(PhilanthropyID, map[string]any{"focus": "education"})
		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0].Message, "does not carry fields")
	})
}
