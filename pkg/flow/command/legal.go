// FILE: pkg/flow/command/legal.go
// PURPOSE: Legal basis answer interpreter

package command

import (
	"strings"

	"etp-authoring-be/pkg/flow/textnorm"
)

const (
	IntentLegalBasisSet   = "legal_basis_set"
	IntentLegalBasisNotes = "legal_basis_notes"
	IntentFinalizePhase   = "finalize"
)

var legalRefMarkers = []string{"lei", "art.", "artigo", "inciso", "decreto", "portaria", "estatuto", "instrucao normativa", "resolucao"}

// ParseLegalBasis interprets a reply in the legal basis phase. The text of
// a recognized reference is kept verbatim (original casing and accents).
func ParseLegalBasis(message string) Intent {
	msg := textnorm.Normalize(message)

	if containsAny(msg, legalRefMarkers) {
		return Intent{
			Name:    IntentLegalBasisSet,
			Message: "Base legal registrada.",
			Payload: map[string]any{"text": strings.TrimSpace(message)},
		}
	}
	if containsAny(msg, []string{"observacao", "nota", "comentario"}) {
		return Intent{
			Name:    IntentLegalBasisNotes,
			Message: "Observação registrada.",
			Payload: map[string]any{"text": strings.TrimSpace(message)},
		}
	}
	if containsAny(msg, []string{"finalizar", "encerrar", "concluido", "seguir"}) {
		return Intent{Name: IntentFinalizePhase, Message: "Fase de base legal concluída."}
	}

	return Intent{Name: IntentUnclear, Message: "Não entendi sua informação sobre base legal. Pode citar a lei, decreto ou norma aplicável, ou pedir uma sugestão?"}
}
