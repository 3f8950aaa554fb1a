// FILE: pkg/flow/command/intent.go
// PURPOSE: Shared intent shape and cross-domain detectors

package command

import (
	"regexp"
	"strconv"
	"strings"

	"etp-authoring-be/pkg/flow/textnorm"
)

// Intent is the output of the domain-specific sibling interpreters.
// Payload is free-form per domain; nil when the intent carries no data.
type Intent struct {
	Name    string
	Message string
	Payload map[string]any
}

const IntentUnclear = "unclear"

var (
	vagueAckRe = regexp.MustCompile(`^\s*(ok(ay)?|vamos|pode\s+(seguir|continuar)|segue|blz|beleza|ta\s+bom|certo|uai|partiu|entendido|perfeito|manda)\s*\.?!?\s*$`)

	uncertaintyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`nao\s+sei`),
		regexp.MustCompile(`n\s+sei`),
		regexp.MustCompile(`\bns\b`),
		regexp.MustCompile(`desconheco`),
		regexp.MustCompile(`nao\s+tenho\s+(certeza|ideia|nocao)`),
		regexp.MustCompile(`sem\s+(nocao|ideia|base)`),
		regexp.MustCompile(`dificil\s+estimar`),
		regexp.MustCompile(`nao\s+faco\s+ideia`),
		regexp.MustCompile(`ainda\s+nao\s+sei`),
		regexp.MustCompile(`por\s+enquanto\s+nada`),
		regexp.MustCompile(`nao\s+tenho\s+isso`),
	}

	pendingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(pode\s+)?deixar\s+pendente`),
		regexp.MustCompile(`aceito?\s+pendente`),
		regexp.MustCompile(`registr(e|ar)\s+(como\s+)?pendente`),
		regexp.MustCompile(`marqu(e|ar)\s+(como\s+)?pendente`),
		regexp.MustCompile(`fica\s+pendente`),
		regexp.MustCompile(`deixa\s+pendente`),
		regexp.MustCompile(`^\s*pendente\s*$`),
	}

	selectNumberRe = regexp.MustCompile(`^\s*([1-9])\s*$`)
)

// IsVagueAck detects acknowledgments ("ok", "beleza", "pode seguir") that
// must not store data by themselves. Full-string match only.
func IsVagueAck(text string) bool {
	if text == "" {
		return false
	}
	return vagueAckRe.MatchString(textnorm.Normalize(text))
}

// IsUncertain detects "não sei"-family uncertainty. Checked before any
// negation heuristic in every domain interpreter, so "não sei" never
// misclassifies as a plain "não".
func IsUncertain(text string) bool {
	if text == "" {
		return false
	}
	normalized := textnorm.Normalize(text)
	for _, p := range uncertaintyPatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}

// IsExplicitPending detects an explicit request to record the topic as
// "Pendente" instead of answering it.
func IsExplicitPending(text string) bool {
	if text == "" {
		return false
	}
	normalized := textnorm.Normalize(text)
	for _, p := range pendingPatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}

// SelectNumber returns (n, true) when the message is a bare 1-9 selection.
func SelectNumber(text string) (int, bool) {
	m := selectNumberRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	n, _ := strconv.Atoi(m[1])
	return n, true
}
