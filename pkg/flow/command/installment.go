// FILE: pkg/flow/command/installment.go
// PURPOSE: Installment (parcelamento) decision interpreter

package command

import (
	"strings"
	"unicode"

	"etp-authoring-be/pkg/flow/textnorm"
)

const (
	IntentInstallmentYes     = "installment_yes"
	IntentInstallmentNo      = "installment_no"
	IntentInstallmentUnknown = "installment_unknown"
)

var installmentLotMarkers = []string{"lote", "lotes", "fase", "fases", "regiao", "regioes", "etapa", "etapas"}

// ParseInstallment interprets a reply about splitting the procurement in
// lots/phases. Uncertainty runs first (same ordering contract as PCA),
// then the no family, then the yes family — "não haverá" contains the
// yes-marker "havera", so negation must win the race; lot/phase markers
// imply a yes with descriptive text.
func ParseInstallment(message string) Intent {
	msg := textnorm.Normalize(message)
	raw := strings.TrimSpace(message)

	if IsUncertain(message) {
		return Intent{Name: IntentInstallmentUnknown, Message: "Parcelamento não informado."}
	}
	if containsAny(msg, []string{"sem parcelamento", "nao havera", "contratacao unica"}) ||
		(strings.Contains(msg, "nao") && strings.Contains(msg, "parcel")) {
		return Intent{Name: IntentInstallmentNo, Message: "Contratação única indicada."}
	}
	if containsAny(msg, []string{"sim", "havera", "tera", "sera"}) {
		return Intent{Name: IntentInstallmentYes, Message: "Parcelamento indicado.", Payload: map[string]any{"text": installmentDetail(msg, raw)}}
	}
	if containsAny(msg, installmentLotMarkers) {
		return Intent{Name: IntentInstallmentYes, Message: "Parcelamento por lotes/fases indicado.", Payload: map[string]any{"text": raw}}
	}

	return Intent{Name: IntentUnclear, Message: "Faz sentido dividir essa contratação em lotes ou fases, ou prefere contratação única? Se quiser, explico os prós e contras."}
}

// Words a bare confirmation is made of. A yes whose message reduces to
// these carries no descriptive text worth putting in the document.
var installmentFiller = map[string]struct{}{
	"sim": {}, "havera": {}, "tera": {}, "sera": {}, "vai": {}, "haver": {},
	"ter": {}, "ser": {}, "parcelamento": {}, "parcelado": {}, "parcelada": {},
	"parcelar": {}, "contratacao": {}, "a": {}, "o": {}, "e": {}, "de": {},
	"que": {}, "com": {}, "ok": {},
}

func installmentDetail(normalized, raw string) string {
	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		if _, filler := installmentFiller[w]; !filler {
			return raw
		}
	}
	return ""
}
