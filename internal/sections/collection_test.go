package sections

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_UpdateContent(t *testing.T) {
	c := Parse("")

	assert.True(t, c.UpdateContent(Skills, "Go\nSQL"))
	s, _ := c.Get(Skills)
	assert.Equal(t, "Go\nSQL", s.Content)

	assert.False(t, c.UpdateContent("missing", "x"))
	assert.Equal(t, 4, c.Len())
}

func TestCollection_UpdateTitle(t *testing.T) {
	c := Parse("")

	assert.True(t, c.UpdateTitle(Experience, "Career"))
	s, ok := c.Get(Experience)
	require.True(t, ok)
	assert.Equal(t, "Career", s.Title)
	assert.Equal(t, Experience, s.ID)

	assert.False(t, c.UpdateTitle("missing", "x"))
}

func TestCollection_AddGeneratesUniqueIDs(t *testing.T) {
	c := Parse("")

	first := c.Add()
	second := c.Add()

	assert.NotEqual(t, first.ID, second.ID)
	assert.Contains(t, string(first.ID), CustomIDPrefix)
	assert.Equal(t, NewSectionTitle, first.Title)
	assert.Empty(t, first.Content)
	assert.Equal(t, 6, c.Len())
	assert.Equal(t, second.ID, c.IDs()[5], "new sections are appended")
}

func TestCollection_AddRetriesOnCollision(t *testing.T) {
	ids := []string{"a", "a", "b"}
	c := Parse("")
	c.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first := c.Add()
	second := c.Add()

	assert.Equal(t, ID("custom-a"), first.ID)
	assert.Equal(t, ID("custom-b"), second.ID)
}

func TestCollection_AddThenRemoveRestoresCollection(t *testing.T) {
	c := Parse(sampleResume)
	before := c.Sections()

	added := c.Add()
	require.NoError(t, c.Remove(added.ID))

	assert.Equal(t, before, c.Sections())
}

func TestCollection_RemoveProtected(t *testing.T) {
	c := Parse("")
	for _, id := range []ID{Summary, Experience, Skills, Education} {
		err := c.Remove(id)
		assert.ErrorIs(t, err, ErrProtectedSection)
	}
	assert.Equal(t, 4, c.Len())
}

func TestCollection_RemoveOptionalAndAbsent(t *testing.T) {
	c := Parse(sampleResume)

	require.NoError(t, c.Remove(Projects))
	_, ok := c.Get(Projects)
	assert.False(t, ok)

	assert.NoError(t, c.Remove("custom-missing"))
	assert.Equal(t, 5, c.Len())
}

func TestCollection_Serialize(t *testing.T) {
	c := NewCollection(
		Section{ID: Summary, Title: "Professional Summary", Content: "Go developer"},
		Section{ID: Experience, Title: "Work Experience", Content: "   "},
		Section{ID: Skills, Title: "Skills", Content: "Go\nSQL"},
		Section{ID: "custom-1", Title: "Volunteering", Content: "Food bank"},
	)

	assert.Equal(t,
		"Professional Summary\nGo developer\n\nSkills\nGo\nSQL\n\nVolunteering\nFood bank",
		c.Serialize())
}

func TestCollection_SerializeEmpty(t *testing.T) {
	assert.Equal(t, "", Parse("").Serialize())
}

func TestNewCollection_DropsDuplicateIDs(t *testing.T) {
	c := NewCollection(
		Section{ID: Skills, Title: "Skills", Content: "first"},
		Section{ID: Skills, Title: "Skills", Content: "second"},
	)
	require.Equal(t, 1, c.Len())
	s, _ := c.Get(Skills)
	assert.Equal(t, "first", s.Content)
}

func TestCollection_CloneIsIndependent(t *testing.T) {
	c := Parse("Skills\nGo")
	clone := c.Clone()

	clone.UpdateContent(Skills, "Rust")

	s, _ := c.Get(Skills)
	assert.Equal(t, "Go", s.Content)
}

func TestCollection_JSON(t *testing.T) {
	c := Parse("Skills\nGo")

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"id":"skills","title":"Skills","content":"Go"}`)

	var decoded Collection
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, c.Sections(), decoded.Sections())
}
