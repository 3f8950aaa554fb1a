// FILE: pkg/flow/stage/machine.go
// PURPOSE: Guarded conversation state machine for the ETP authoring flow

package stage

import (
	"fmt"
	"regexp"

	"etp-authoring-be/pkg/flow/textnorm"
)

// Stage is one node of the conversation flow.
type Stage string

const (
	CollectNeed         Stage = "collect_need"
	SuggestRequirements Stage = "suggest_requirements"
	RefineRequirements  Stage = "refine_requirements"
	ConfirmRequirements Stage = "confirm_requirements"
	GenerateDocument    Stage = "generate_document"
	Preview             Stage = "preview"
	Finalize            Stage = "finalize" // Terminal
)

// validTransitions is the fixed adjacency map. Every edge except the
// refine_requirements self-loop requires explicit user confirmation.
var validTransitions = map[Stage][]Stage{
	CollectNeed:         {SuggestRequirements},
	SuggestRequirements: {RefineRequirements},
	RefineRequirements:  {RefineRequirements, ConfirmRequirements},
	ConfirmRequirements: {GenerateDocument},
	GenerateDocument:    {Preview},
	Preview:             {Finalize},
	Finalize:            {},
}

// confirmationPatterns is the bounded PT-BR confirmation vocabulary,
// matched whole-word against the normalized (lowercase, accent-free) message.
var confirmationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bok\b`),
	regexp.MustCompile(`\bseguir\b`),
	regexp.MustCompile(`\bprosseguir\b`),
	regexp.MustCompile(`\bmanter\b`),
	regexp.MustCompile(`\baceito\b`),
	regexp.MustCompile(`\bacordado\b`),
	regexp.MustCompile(`\bconcordo\b`),
	regexp.MustCompile(`\bfechou\b`),
	regexp.MustCompile(`\bpode gerar\b`),
	regexp.MustCompile(`\bpode seguir\b`),
	regexp.MustCompile(`\bsegue\b`),
	regexp.MustCompile(`\bconfirmo\b`),
	regexp.MustCompile(`\bconfirmado\b`),
	regexp.MustCompile(`\bconfirmar\b`),
	regexp.MustCompile(`\baprovado\b`),
	regexp.MustCompile(`\baprovada\b`),
	regexp.MustCompile(`\bpode prosseguir\b`),
	regexp.MustCompile(`\bpode continuar\b`),
	regexp.MustCompile(`\bsem alteracoes\b`),
	regexp.MustCompile(`\bsem ajustes\b`),
	regexp.MustCompile(`\bmanter assim\b`),
	regexp.MustCompile(`\besta bom\b`),
	regexp.MustCompile(`\bta bom\b`),
	regexp.MustCompile(`\bpode manter\b`),
	regexp.MustCompile(`\bperfeito\b`),
	regexp.MustCompile(`\bcorreto\b`),
	regexp.MustCompile(`\bcerto\b`),
}

// Valid reports whether s is one of the enumerated stages.
func Valid(s Stage) bool {
	_, ok := validTransitions[s]
	return ok
}

// IsUserConfirmed checks the message for an explicit confirmation signal.
func IsUserConfirmed(message string) bool {
	if message == "" {
		return false
	}
	normalized := textnorm.Normalize(message)
	for _, p := range confirmationPatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}

// Validate checks whether the transition current → next is allowed.
// A false result carries a specific reason; the caller must keep the
// session in its current stage and surface the reason as the reply,
// never as a hard failure.
func Validate(current, next Stage, userConfirmed bool) (bool, string) {
	if !Valid(current) {
		return false, fmt.Sprintf("Estado inválido: %s", current)
	}
	if !Valid(next) {
		return false, fmt.Sprintf("Estado de destino inválido: %s", next)
	}

	allowed := false
	for _, s := range validTransitions[current] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, fmt.Sprintf("Transição não permitida de %s para %s", current, next)
	}

	// refine_requirements may loop to itself freely so the user can edit
	// as many times as needed before confirming.
	if current == RefineRequirements && next == RefineRequirements {
		return true, ""
	}

	if current != next && !userConfirmed {
		return false, "Transição requer confirmação explícita do usuário"
	}

	return true, ""
}

// Next returns the single allowed next stage, or current when terminal.
func Next(current Stage) Stage {
	allowed := validTransitions[current]
	for _, s := range allowed {
		if s != current {
			return s
		}
	}
	return current
}

// NextAfterSuggestion implements the forced edge: after suggest_requirements
// the flow ALWAYS advances to refine_requirements, whatever the message said.
// This keeps an ambiguous first reply to the suggested list from stalling the flow.
func NextAfterSuggestion(current Stage) Stage {
	if current == SuggestRequirements {
		return RefineRequirements
	}
	return current
}

// CanGenerate gates document generation: only allowed from
// confirm_requirements with an explicit confirmation in the triggering message.
func CanGenerate(current Stage, userConfirmed bool) (bool, string) {
	if current != ConfirmRequirements {
		return false, fmt.Sprintf(
			"Geração do ETP só é permitida na etapa '%s'. Etapa atual: %s",
			ConfirmRequirements, current)
	}
	if !userConfirmed {
		return false, "Geração do ETP requer confirmação explícita do usuário"
	}
	return true, ""
}
