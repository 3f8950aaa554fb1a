package retrieval

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"etp-authoring-be/pkg/embedding"
	"etp-authoring-be/pkg/flow/textnorm"
)

// VectorSearcher is the persistence-side contract: nearest chunks by
// cosine similarity above a threshold. Implemented over pgvector by the
// repository layer.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, vector []float32, limit int, threshold float64) ([]Snippet, error)
}

// LexicalSearcher returns candidate chunks for a token query. The hybrid
// retriever re-scores them; the implementation only needs recall.
type LexicalSearcher interface {
	SearchByTokens(ctx context.Context, tokens []string, limit int) ([]Snippet, error)
}

// HybridRetriever merges vector and lexical candidates with weighted
// scores. Lexical carries the larger weight: procurement vocabulary is
// dominated by exact statute and section names.
type HybridRetriever struct {
	embedder embedding.EmbeddingProvider
	vector   VectorSearcher
	lexical  LexicalSearcher
	logger   *zap.Logger

	lexicalWeight float64
	vectorWeight  float64
	threshold     float64
}

var _ Retriever = (*HybridRetriever)(nil)

func NewHybridRetriever(embedder embedding.EmbeddingProvider, vector VectorSearcher, lexical LexicalSearcher, logger *zap.Logger) *HybridRetriever {
	return &HybridRetriever{
		embedder:      embedder,
		vector:        vector,
		lexical:       lexical,
		logger:        logger,
		lexicalWeight: 0.7,
		vectorWeight:  0.3,
		threshold:     0.35,
	}
}

// Retrieve runs both searches and merges by chunk id. Either side may
// fail or come back empty; the other side's results still count. Only a
// failure of both surfaces as an error.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, limit int) ([]Snippet, error) {
	if limit <= 0 {
		limit = 5
	}
	tokens := Tokenize(query)

	var lexResults []Snippet
	if r.lexical != nil && len(tokens) > 0 {
		var err error
		lexResults, err = r.lexical.SearchByTokens(ctx, tokens, limit*2)
		if err != nil {
			r.logger.Warn("lexical search failed", zap.Error(err))
			lexResults = nil
		}
	}

	var vecResults []Snippet
	if r.embedder != nil && r.vector != nil {
		vec, err := r.embedder.Embed(ctx, query)
		if err != nil {
			r.logger.Warn("query embedding failed", zap.Error(err))
		} else if len(vec) > 0 {
			vecResults, err = r.vector.SearchSimilar(ctx, vec, limit*2, r.threshold)
			if err != nil {
				r.logger.Warn("vector search failed", zap.Error(err))
				vecResults = nil
			}
		}
	}

	merged := r.merge(tokens, lexResults, vecResults)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func (r *HybridRetriever) merge(queryTokens []string, lexResults, vecResults []Snippet) []Snippet {
	type scored struct {
		snippet Snippet
		lex     float64
		vec     float64
	}
	byId := map[string]*scored{}
	var order []string

	for _, s := range lexResults {
		score := LexicalScore(queryTokens, s.Content)
		byId[s.ChunkId] = &scored{snippet: s, lex: score}
		order = append(order, s.ChunkId)
	}
	for _, s := range vecResults {
		if existing, ok := byId[s.ChunkId]; ok {
			existing.vec = s.Score
			continue
		}
		byId[s.ChunkId] = &scored{snippet: s, vec: s.Score, lex: LexicalScore(queryTokens, s.Content)}
		order = append(order, s.ChunkId)
	}

	out := make([]Snippet, 0, len(order))
	for _, id := range order {
		sc := byId[id]
		sc.snippet.Score = r.lexicalWeight*sc.lex + r.vectorWeight*sc.vec
		out = append(out, sc.snippet)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

var tokenRe = regexp.MustCompile(`\w+`)

// Tokenize lowercases, strips accents and drops tokens shorter than
// three characters.
func Tokenize(text string) []string {
	var out []string
	for _, tok := range tokenRe.FindAllString(textnorm.Normalize(text), -1) {
		if len(tok) > 2 {
			out = append(out, tok)
		}
	}
	return out
}

// LexicalScore is the query-token coverage of the content, in [0, 1].
func LexicalScore(queryTokens []string, content string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	contentTokens := map[string]bool{}
	for _, tok := range Tokenize(content) {
		contentTokens[tok] = true
	}
	hits := 0
	for _, tok := range queryTokens {
		if contentTokens[tok] {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

// ContextBlock renders snippets as a prompt appendix. Empty input yields
// an empty string so callers can append unconditionally.
func ContextBlock(snippets []Snippet) string {
	if len(snippets) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Contexto da base de conhecimento:\n")
	for _, s := range snippets {
		b.WriteString("- ")
		b.WriteString(strings.TrimSpace(s.Content))
		b.WriteString("\n")
	}
	return b.String()
}
