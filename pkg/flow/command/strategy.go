// FILE: pkg/flow/command/strategy.go
// PURPOSE: Solution strategy selection by number, title or word overlap

package command

import (
	"regexp"
	"strings"

	"etp-authoring-be/pkg/flow/textnorm"
)

const (
	IntentStrategySelect = "strategy_select"
	IntentStrategyMore   = "strategy_more"
)

var wordRe = regexp.MustCompile(`\w+`)

// ParseStrategy resolves the user's reply against the offered strategy
// titles. Returns a 1-based selection in the payload when matched.
func ParseStrategy(message string, titles []string) Intent {
	if n, ok := SelectNumber(message); ok && n <= len(titles) {
		return Intent{
			Name:    IntentStrategySelect,
			Message: "Estratégia selecionada.",
			Payload: map[string]any{"index": n},
		}
	}

	if idx, ok := MatchStrategyTitle(message, titles); ok {
		return Intent{
			Name:    IntentStrategySelect,
			Message: "Estratégia selecionada.",
			Payload: map[string]any{"index": idx + 1},
		}
	}

	msg := textnorm.Normalize(message)
	if containsAny(msg, []string{"comparar", "compare", "recomende", "recomenda", "sugira", "sugestao", "mais opcoes", "outras opcoes"}) {
		return Intent{Name: IntentStrategyMore, Message: "Solicitação de comparação ou recomendação."}
	}

	return Intent{Name: IntentUnclear, Message: "Qual das estratégias apresentadas faz mais sentido para o seu caso? Pode responder pelo número ou pelo nome."}
}

// MatchStrategyTitle tries an exact substring match first, then a Jaccard
// word-overlap score with a 0.4 acceptance floor. Returns a 0-based index.
func MatchStrategyTitle(message string, titles []string) (int, bool) {
	if message == "" || len(titles) == 0 {
		return 0, false
	}
	input := textnorm.Normalize(message)

	for i, title := range titles {
		t := textnorm.Normalize(title)
		if t == "" {
			continue
		}
		if strings.Contains(t, input) || strings.Contains(input, t) {
			return i, true
		}
	}

	inputWords := wordSet(input)
	if len(inputWords) == 0 {
		return 0, false
	}

	bestScore := 0.0
	bestIdx := -1
	for i, title := range titles {
		titleWords := wordSet(textnorm.Normalize(title))
		if len(titleWords) == 0 {
			continue
		}
		inter := 0
		for w := range inputWords {
			if titleWords[w] {
				inter++
			}
		}
		union := len(inputWords) + len(titleWords) - inter
		if union == 0 {
			continue
		}
		score := float64(inter) / float64(union)
		if score > 0.3 && score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestScore >= 0.4 {
		return bestIdx, true
	}
	return 0, false
}

func wordSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range wordRe.FindAllString(s, -1) {
		out[w] = true
	}
	return out
}
