package fallback

import (
	"context"

	"etp-authoring-be/pkg/llm"
)

// Provider is the deterministic no-backend provider. It returns an empty
// payload so the response guard's templates take over; the conversation
// keeps working end to end without any model running. Used when no LLM is
// configured.
type Provider struct{}

var _ llm.LLMProvider = Provider{}

func New() Provider {
	return Provider{}
}

func (Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return response(opts), nil
}

func (Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return response(opts), nil
}

func response(opts []llm.Option) string {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}
	if options.JSONMode {
		return "{}"
	}
	return ""
}
