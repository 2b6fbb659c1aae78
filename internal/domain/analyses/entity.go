package analyses

import "time"

// AnalysisID identifier type
type AnalysisID = string

// Analysis is the immutable record of one model invocation.
// FilesAnalyzed is a snapshot list; referenced files may later disappear.
type Analysis struct {
	ID            AnalysisID `json:"id"`
	CustomerID    string     `json:"customer_id"`
	FilesAnalyzed []string   `json:"files_analyzed"`
	Content       Content    `json:"content"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Summary is the list view of an analysis.
type Summary struct {
	ID            AnalysisID `json:"id"`
	CustomerID    string     `json:"customer_id"`
	FilesAnalyzed []string   `json:"files_analyzed"`
	Schema        Schema     `json:"schema"`
	Preview       string     `json:"preview"`
	CreatedAt     time.Time  `json:"created_at"`
}

const previewLen = 240

// Summarize builds the list view, previewing the lead section or the raw text.
func (a *Analysis) Summarize() Summary {
	preview := a.Content.Lead()
	if r := []rune(preview); len(r) > previewLen {
		preview = string(r[:previewLen]) + "..."
	}
	return Summary{
		ID:            a.ID,
		CustomerID:    a.CustomerID,
		FilesAnalyzed: a.FilesAnalyzed,
		Schema:        a.Content.Schema,
		Preview:       preview,
		CreatedAt:     a.CreatedAt,
	}
}
