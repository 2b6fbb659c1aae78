// Package content renders customer files into the single text bundle sent to the model.
package content

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	"github.com/bryanwahyu/callprep/internal/domain/files"
)

// Separator sits between file blocks.
const Separator = "\n\n---\n\n"

const dateLayout = "2006-01-02"

// Bundle is the assembled prompt text and the ids of the files that contributed to it,
// in bundle order. Selected lists every requested id that resolved to one of the
// customer's files, eligible or not, in request order without duplicates.
type Bundle struct {
	Text     string
	FileIDs  []string
	Selected []string
}

// Assemble renders the eligible files among fetched in the order given by ids.
// Ids with no matching fetched file are dropped. Duplicate ids are rendered once.
// It fails with apperr.ErrNoContent when nothing eligible remains.
func Assemble(ids []string, fetched []*files.File) (Bundle, error) {
	byID := make(map[string]*files.File, len(fetched))
	for _, f := range fetched {
		if f != nil {
			byID[f.ID] = f
		}
	}

	var b Bundle
	blocks := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		f, ok := byID[id]
		if !ok {
			continue
		}
		b.Selected = append(b.Selected, f.ID)
		if !f.Eligible() {
			continue
		}
		blocks = append(blocks, Block(f))
		b.FileIDs = append(b.FileIDs, f.ID)
	}

	b.Text = strings.Join(blocks, Separator)
	if strings.TrimSpace(b.Text) == "" {
		return Bundle{}, fmt.Errorf("%w: none of the selected files has text to analyze", apperr.ErrNoContent)
	}
	return b, nil
}

// Label names the kind of source a file block came from.
func Label(t files.Type) string {
	switch t {
	case files.TypeEmail:
		return "EMAIL"
	case files.TypeTranscript:
		return "CALL TRANSCRIPT"
	case files.TypeAudio:
		return "CALL TRANSCRIPTION"
	default:
		return strings.ToUpper(string(t))
	}
}

// Block renders one file: label and name, date, optional notes, then the raw content.
func Block(f *files.File) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", Label(f.Type), f.Name)
	if d := f.EffectiveDate(); !d.IsZero() {
		fmt.Fprintf(&sb, "Date: %s\n", d.Format(dateLayout))
	}
	if f.Notes != nil && strings.TrimSpace(*f.Notes) != "" {
		fmt.Fprintf(&sb, "Notes: %s\n", strings.TrimSpace(*f.Notes))
	}
	sb.WriteString("\n")
	if f.Content != nil {
		sb.WriteString(*f.Content)
	}
	return sb.String()
}
