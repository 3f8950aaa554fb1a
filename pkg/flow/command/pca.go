// FILE: pkg/flow/command/pca.go
// PURPOSE: PCA (annual procurement plan) answer interpreter

package command

import (
	"strings"

	"etp-authoring-be/pkg/flow/textnorm"
)

const (
	IntentPCAYes     = "pca_yes"
	IntentPCANo      = "pca_no"
	IntentPCAUnknown = "pca_unknown"
	IntentPCADetails = "pca_details"
	IntentProceed    = "proceed_next"
)

var pcaDetailMarkers = []string{"nº", "no.", "numero", "ano", "item", "itens", "capitulo", "secao"}

// ParsePCA interprets a reply about the annual procurement plan.
// The check order is part of the contract: uncertainty ("não sei") runs
// before negation, otherwise the "nao" substring of "não sei" would
// classify the message as pca_no.
func ParsePCA(message string) Intent {
	msg := textnorm.Normalize(message)

	hasUnknown := IsUncertain(message) || strings.Contains(msg, "incerto")
	hasNo := containsAny(msg, []string{"nao esta no pca", "sem pca"}) ||
		(strings.Contains(msg, "nao") && strings.Contains(msg, "pca") && !strings.Contains(msg, "nao sei"))
	hasYes := containsAny(msg, []string{"sim", "esta no pca", "previsto no pca", "conforme pca"})
	proceed := containsAny(msg, []string{"seguir", "prosseguir", "pode continuar", "avancar"})
	hasDetails := containsAny(msg, pcaDetailMarkers)

	switch {
	case hasUnknown:
		return Intent{Name: IntentPCAUnknown, Message: "PCA não informado pelo usuário."}
	case hasNo:
		return Intent{Name: IntentPCANo, Message: "PCA indicado como inexistente."}
	case hasYes && !hasDetails:
		return Intent{Name: IntentPCAYes, Message: "PCA indicado como existente."}
	case hasDetails:
		return Intent{Name: IntentPCADetails, Message: "Detalhes do PCA fornecidos.", Payload: map[string]any{"raw": strings.TrimSpace(message)}}
	case proceed:
		return Intent{Name: IntentProceed, Message: "Solicitação para avançar."}
	default:
		return Intent{Name: IntentUnclear, Message: "Não entendi a informação sobre o PCA. Essa contratação já consta no plano anual, não consta, ou você prefere registrar como pendente?"}
	}
}
