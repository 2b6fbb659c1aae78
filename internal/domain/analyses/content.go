package analyses

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Schema versions the shape of stored analysis content.
type Schema string

const (
	// SchemaFlat is the original six-heading briefing. Rows without a schema tag are read as flat.
	SchemaFlat Schema = "flat.v1"
	// SchemaFivePart is the canonical Part 1..Part 5 briefing.
	SchemaFivePart Schema = "five-part.v2"
)

// SectionDef names one section of a schema and the heading that introduces it.
type SectionDef struct {
	Key    string
	Title  string
	Marker string
}

var schemaSections = map[Schema][]SectionDef{
	SchemaFlat: {
		{Key: "tldr", Title: "TL;DR", Marker: "TL;DR"},
		{Key: "stakeholders", Title: "Stakeholder Map", Marker: "Stakeholder Map"},
		{Key: "dealStatus", Title: "Deal Status & Blockers", Marker: "Deal Status"},
		{Key: "nextCallStrategy", Title: "Next Call Strategy", Marker: "Next Call Strategy"},
		{Key: "competitiveContext", Title: "Competitive Context", Marker: "Competitive Context"},
		{Key: "risks", Title: "Key Risks", Marker: "Key Risks"},
	},
	SchemaFivePart: {
		{Key: "stakeholderMap", Title: "Stakeholder Map", Marker: "PART 1"},
		{Key: "dealPhysics", Title: "Deal Physics", Marker: "PART 2"},
		{Key: "closePlan", Title: "Close Plan", Marker: "PART 3"},
		{Key: "positioningStrategy", Title: "Positioning Strategy", Marker: "PART 4"},
		{Key: "executiveDigest", Title: "Executive Digest", Marker: "PART 5"},
	},
}

// ParseSchema validates a schema tag. The empty string resolves to SchemaFlat.
func ParseSchema(s string) (Schema, error) {
	if s == "" {
		return SchemaFlat, nil
	}
	if _, ok := schemaSections[Schema(s)]; !ok {
		return "", fmt.Errorf("unknown analysis schema: %q", s)
	}
	return Schema(s), nil
}

// Sections returns the ordered section definitions of the schema.
func (s Schema) Sections() []SectionDef {
	defs := schemaSections[s]
	out := make([]SectionDef, len(defs))
	copy(out, defs)
	return out
}

const (
	schemaKey   = "schema"
	fullTextKey = "fullText"
)

// Content is the structured breakdown plus the unmodified model response.
// It serialises flat: {"schema": ..., "<sectionKey>": ..., "fullText": ...}.
type Content struct {
	Schema   Schema
	Sections map[string]string
	FullText string
}

// DisplaySection is one non-empty section, in schema order.
type DisplaySection struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Populated reports whether any known section carries text.
func (c Content) Populated() bool {
	for _, d := range c.Schema.Sections() {
		if strings.TrimSpace(c.Sections[d.Key]) != "" {
			return true
		}
	}
	return false
}

// Display returns the non-empty sections in order. Empty sections are omitted;
// when none is populated a single "fullText" section carries the raw response.
func (c Content) Display() []DisplaySection {
	var out []DisplaySection
	for _, d := range c.Schema.Sections() {
		body := strings.TrimSpace(c.Sections[d.Key])
		if body == "" {
			continue
		}
		out = append(out, DisplaySection{Key: d.Key, Title: d.Title, Body: body})
	}
	if len(out) == 0 && strings.TrimSpace(c.FullText) != "" {
		out = append(out, DisplaySection{Key: fullTextKey, Title: "Full Analysis", Body: strings.TrimSpace(c.FullText)})
	}
	return out
}

// Lead is the text best suited for a short preview.
func (c Content) Lead() string {
	switch c.Schema {
	case SchemaFivePart:
		if v := strings.TrimSpace(c.Sections["executiveDigest"]); v != "" {
			return v
		}
	case SchemaFlat:
		if v := strings.TrimSpace(c.Sections["tldr"]); v != "" {
			return v
		}
	}
	if d := c.Display(); len(d) > 0 {
		return d[0].Body
	}
	return ""
}

func (c Content) MarshalJSON() ([]byte, error) {
	schema := c.Schema
	if schema == "" {
		schema = SchemaFlat
	}
	m := make(map[string]string, len(c.Sections)+2)
	for _, d := range schema.Sections() {
		m[d.Key] = c.Sections[d.Key]
	}
	m[schemaKey] = string(schema)
	m[fullTextKey] = c.FullText
	return json.Marshal(m)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	str := func(key string) string {
		v, ok := raw[key]
		if !ok {
			return ""
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	}

	// An unknown tag keeps only fullText so the record stays displayable.
	schema, err := ParseSchema(str(schemaKey))
	if err != nil {
		schema = Schema(str(schemaKey))
	}
	c.Schema = schema
	c.FullText = str(fullTextKey)
	c.Sections = make(map[string]string)
	for _, d := range schema.Sections() {
		c.Sections[d.Key] = str(d.Key)
	}
	return nil
}
