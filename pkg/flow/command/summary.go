// FILE: pkg/flow/command/summary.go
// PURPOSE: Executive summary review interpreter

package command

import (
	"regexp"
	"strings"

	"etp-authoring-be/pkg/flow/textnorm"
)

const (
	IntentConfirmGenerate   = "confirm_generate"
	IntentRequestAdjustment = "request_adjustment"
	IntentFreeAnswer        = "answer"
)

var generatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bpode gerar\b`),
	regexp.MustCompile(`\bgerar etp\b`),
	regexp.MustCompile(`\bgera etp\b`),
	regexp.MustCompile(`\bok gerar\b`),
	regexp.MustCompile(`\bgerar\b`),
}

// IsGenerateConfirmation detects an explicit request to generate the document.
func IsGenerateConfirmation(message string) bool {
	normalized := textnorm.Normalize(message)
	for _, p := range generatePatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}

// ParseSummary interprets replies to the consolidated summary: generate,
// adjust something, or free text absorbed into the summary.
func ParseSummary(message string) Intent {
	if IsGenerateConfirmation(message) {
		return Intent{Name: IntentConfirmGenerate, Message: "Confirmação para gerar o documento."}
	}
	msg := textnorm.Normalize(message)
	if containsAny(msg, []string{"mudar", "alterar", "trocar", "ajustar", "corrigir"}) {
		return Intent{Name: IntentRequestAdjustment, Message: "Solicitação de ajuste no resumo.", Payload: map[string]any{"request": strings.TrimSpace(message)}}
	}
	return Intent{Name: IntentFreeAnswer, Message: "Resposta registrada.", Payload: map[string]any{"text": strings.TrimSpace(message)}}
}
