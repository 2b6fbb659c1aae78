// Package sections splits free-form model output into named sections by heading markers.
//
// Markers are literal strings matched case-insensitively. A section runs from the start of
// the line holding its marker up to the line holding the next marker, or to end of text.
package sections

import (
	"regexp"
	"strings"

	"github.com/bryanwahyu/callprep/internal/domain/analyses"
)

// Rule delimits one section. End is optional; without it the section stops at the
// start marker of any later rule in the list.
type Rule struct {
	Name  string
	Start string
	End   string
}

// MarkerParser is the regex-backed implementation of analyses.Parser.
type MarkerParser struct{}

var _ analyses.Parser = MarkerParser{}

// New returns a MarkerParser.
func New() MarkerParser { return MarkerParser{} }

// RulesFor turns a schema into ordered marker rules.
func RulesFor(schema analyses.Schema) []Rule {
	defs := schema.Sections()
	rules := make([]Rule, 0, len(defs))
	for _, d := range defs {
		rules = append(rules, Rule{Name: d.Key, Start: d.Marker})
	}
	return rules
}

// Structure parses text with the schema's markers and keeps text as FullText.
func (MarkerParser) Structure(text string, schema analyses.Schema) analyses.Content {
	return analyses.Content{
		Schema:   schema,
		Sections: Parse(text, RulesFor(schema)),
		FullText: text,
	}
}

// Parse returns one entry per rule. A rule whose start marker is absent maps to "".
// Parse is a pure function of text and rules.
func Parse(text string, rules []Rule) map[string]string {
	out := make(map[string]string, len(rules))
	for i, rule := range rules {
		out[rule.Name] = extract(text, rule, rules[i+1:])
	}
	return out
}

func extract(text string, rule Rule, later []Rule) string {
	if strings.TrimSpace(rule.Start) == "" {
		return ""
	}
	start, markerEnd, ok := locate(text, rule.Start, 0)
	if !ok {
		return ""
	}

	var enders []string
	if rule.End != "" {
		enders = []string{rule.End}
	} else {
		for _, s := range later {
			enders = append(enders, s.Start)
		}
	}

	end := len(text)
	for _, marker := range enders {
		if strings.TrimSpace(marker) == "" {
			continue
		}
		if at, _, found := locate(text, marker, markerEnd); found && at < end {
			end = at
		}
	}
	return strings.TrimSpace(text[start:end])
}

// locate finds marker at or after from. Heading-like lines win over mentions in running
// text. The returned start is the beginning of the matching line.
func locate(text, marker string, from int) (lineStart, markerEnd int, ok bool) {
	quoted := regexp.QuoteMeta(marker)
	heading := regexp.MustCompile(`(?im)^[ \t>#*_\d.)]*` + quoted)
	anywhere := regexp.MustCompile(`(?i)` + quoted)

	tail := text[from:]
	if loc := heading.FindStringIndex(tail); loc != nil {
		return from + loc[0], from + loc[1], true
	}
	loc := anywhere.FindStringIndex(tail)
	if loc == nil {
		return 0, 0, false
	}
	at := from + loc[0]
	ls := strings.LastIndexByte(text[:at], '\n') + 1
	if ls < from {
		ls = from
	}
	return ls, from + loc[1], true
}
