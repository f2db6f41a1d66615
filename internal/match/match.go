// Package match holds the résumé-to-job-posting bookkeeping: postings own
// keywords, keywords own candidate phrases, and the match state tracks how
// much of a posting's vocabulary the résumé already covers.
package match

import "time"

type JobPosting struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Keyword struct {
	ID        string `json:"id"`
	PostingID string `json:"posting_id"`
	Text      string `json:"text"`
	// Priority 1 is most important, higher numbers matter less
	Priority int  `json:"priority"`
	Matched  bool `json:"matched"`
}

type Phrase struct {
	ID        string `json:"id"`
	KeywordID string `json:"keyword_id"`
	Text      string `json:"text"`
	// Source is "llm" for drafted phrases, "user" for manual ones
	Source  string `json:"source"`
	Adopted bool   `json:"adopted"`
}

// Summary is the per-posting match state.
type Summary struct {
	PostingID string `json:"posting_id"`
	Total     int    `json:"total"`
	Matched   int    `json:"matched"`
}

// Snapshot is the serializable full state, used by persistence backends.
type Snapshot struct {
	Postings []JobPosting `json:"postings"`
	Keywords []Keyword    `json:"keywords"`
	Phrases  []Phrase     `json:"phrases"`
}
