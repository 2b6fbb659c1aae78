package analyses

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema("")
	require.NoError(t, err)
	assert.Equal(t, SchemaFlat, s)

	s, err = ParseSchema("five-part.v2")
	require.NoError(t, err)
	assert.Equal(t, SchemaFivePart, s)

	_, err = ParseSchema("v9")
	assert.Error(t, err)
}

func TestSections_ReturnsCopy(t *testing.T) {
	defs := SchemaFivePart.Sections()
	require.Len(t, defs, 5)
	defs[0].Key = "changed"
	assert.Equal(t, "stakeholderMap", SchemaFivePart.Sections()[0].Key)
	assert.Len(t, SchemaFlat.Sections(), 6)
}

func TestContent_JSONShape(t *testing.T) {
	c := Content{
		Schema:   SchemaFivePart,
		Sections: map[string]string{"stakeholderMap": "map", "executiveDigest": "digest"},
		FullText: "raw",
	}
	data, err := json.Marshal(c)
	require.NoError(t, err)

	var flat map[string]string
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "five-part.v2", flat["schema"])
	assert.Equal(t, "raw", flat["fullText"])
	assert.Equal(t, "map", flat["stakeholderMap"])
	assert.Equal(t, "", flat["closePlan"])
	assert.NotContains(t, flat, "tldr")
}

func TestContent_UntaggedReadsAsFlat(t *testing.T) {
	var c Content
	require.NoError(t, json.Unmarshal([]byte(`{"tldr":"short","risks":"churn","fullText":"all"}`), &c))

	assert.Equal(t, SchemaFlat, c.Schema)
	assert.Equal(t, "short", c.Sections["tldr"])
	assert.Equal(t, "churn", c.Sections["risks"])
	assert.Equal(t, "all", c.FullText)
}

func TestContent_UnknownSchemaFallsBackToFullText(t *testing.T) {
	var c Content
	require.NoError(t, json.Unmarshal([]byte(`{"schema":"seven-part.v3","partOne":"x","fullText":"everything"}`), &c))

	assert.Equal(t, Schema("seven-part.v3"), c.Schema)
	d := c.Display()
	require.Len(t, d, 1)
	assert.Equal(t, DisplaySection{Key: "fullText", Title: "Full Analysis", Body: "everything"}, d[0])
}

func TestContent_DisplayOmitsEmptyInOrder(t *testing.T) {
	c := Content{
		Schema:   SchemaFlat,
		Sections: map[string]string{"risks": "r", "tldr": "t", "stakeholders": "  "},
		FullText: "t r",
	}
	d := c.Display()
	require.Len(t, d, 2)
	assert.Equal(t, "tldr", d[0].Key)
	assert.Equal(t, "TL;DR", d[0].Title)
	assert.Equal(t, "risks", d[1].Key)
}

func TestContent_Lead(t *testing.T) {
	five := Content{Schema: SchemaFivePart, Sections: map[string]string{"stakeholderMap": "map", "executiveDigest": "digest"}}
	assert.Equal(t, "digest", five.Lead())

	five.Sections["executiveDigest"] = ""
	assert.Equal(t, "map", five.Lead())

	assert.Equal(t, "", Content{}.Lead())
}

func TestAnalysis_Summarize(t *testing.T) {
	long := strings.Repeat("é", 300)
	a := &Analysis{
		ID:            "a1",
		CustomerID:    "c1",
		FilesAnalyzed: []string{"f1"},
		Content:       Content{Schema: SchemaFlat, Sections: map[string]string{"tldr": long}},
		CreatedAt:     time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	s := a.Summarize()

	assert.Equal(t, "a1", s.ID)
	assert.Equal(t, SchemaFlat, s.Schema)
	assert.Equal(t, []string{"f1"}, s.FilesAnalyzed)
	assert.Equal(t, 243, len([]rune(s.Preview)))
	assert.True(t, strings.HasSuffix(s.Preview, "..."))
}
