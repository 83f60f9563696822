package domain

import "time"

type QueryRequest struct {
	UserID      int64
	Question    string
	RequestedAt time.Time
}

type AnswerSource string

const (
	SourceAI     AnswerSource = "ai"
	SourceSearch AnswerSource = "search"
	SourceNone   AnswerSource = "none"
)

// Answer is the best-effort result of a query. Source tells the caller
// whether it came from the AI endpoint, the plain search fallback, or
// nowhere at all (no results sentinel).
type Answer struct {
	Text      string
	Source    AnswerSource
	Documents []DocumentRef
	Total     int
}

type DocumentRef struct {
	ID      int64
	Title   string
	Created string
}

type SearchResult struct {
	Total     int
	Documents []DocumentRef
}
