package extensions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionByID(t *testing.T) {
	def, err := DefinitionByID(PublicCompanyID)
	require.NoError(t, err)
	assert.Equal(t, "PublicCompany", def.Name)
	assert.True(t, def.HasFields())

	_, err = DefinitionByID(9999)
	assert.Error(t, err)
}

func TestDefinitionByName(t *testing.T) {
	def, err := DefinitionByName("Person")
	require.NoError(t, err)
	assert.Equal(t, PersonID, def.ID)
	assert.Equal(t, 1, def.Tier)

	_, err = DefinitionByName("Robot")
	assert.Error(t, err)
}

func TestDefinitionsFor(t *testing.T) {
	t.Run("person addons", func(t *testing.T) {
		defs := DefinitionsFor(ParentPerson)
		require.NotEmpty(t, defs)

		names := make(map[string]bool, len(defs))
		for _, d := range defs {
			assert.NotEqual(t, 1, d.Tier)
			names[d.Name] = true
		}

		assert.True(t, names["Lobbyist"])
		assert.True(t, names["ElectedRepresentative"])
		assert.False(t, names["Person"], "tier 1 definitions are not addons")
		assert.False(t, names["Business"], "org addons do not apply to people")
	})

	t.Run("sorted by name", func(t *testing.T) {
		defs := DefinitionsFor(ParentOrg)
		for i := 1; i < len(defs); i++ {
			assert.Less(t, defs[i-1].Name, defs[i].Name)
		}
	})
}

func TestDisplayNames(t *testing.T) {
	names := DisplayNames()
	assert.Equal(t, "Public Company", names[PublicCompanyID])
	assert.Equal(t, "Elected Representative", names[ElectedRepresentativeID])
}
