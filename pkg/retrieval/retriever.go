package retrieval

import "context"

// Snippet is one retrieved knowledge-base excerpt.
type Snippet struct {
	ChunkId     string
	SectionType string
	Content     string
	Score       float64
}

// Retriever finds knowledge-base context for a query. An empty result is
// a valid answer and must never block the conversation.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]Snippet, error)
}
