// FILE: pkg/flow/command/qtyvalue.go
// PURPOSE: Quantity/value estimate interpreter

package command

import (
	"regexp"
	"strconv"
	"strings"

	"etp-authoring-be/pkg/flow/textnorm"
)

const (
	IntentQtyValueSet     = "qty_value_set"
	IntentQtyValueText    = "qty_value_text"
	IntentQtyValueUnknown = "qty_value_unknown"
)

var (
	qtyUnitRe = regexp.MustCompile(`\b(\d+)\s*(unidades?|itens|item|equipamentos?|servidores?|licencas?|postos?|veiculos?|aeronaves?)\b`)

	// A value needs an explicit currency marker or a scale word; a bare
	// number is a quantity, not a value. Scale alternatives run longest
	// first so "milhoes" never half-matches as "mil".
	currencyRe = regexp.MustCompile(`r\$\s*(\d+(?:[.,]\d+)*)\s*(milhoes|milhao|mil|mi|k)?\b`)
	scaledRe   = regexp.MustCompile(`\b(\d+(?:[.,]\d+)*)\s*(milhoes|milhao|reais|mil|mi|k)\b`)

	bareQtyRe = regexp.MustCompile(`\b(\d+)\b`)
)

// ParseQtyValue interprets a reply about estimated quantities and values.
// Uncertainty runs first, then the skip family; any message carrying a
// number or currency amount is extracted, anything else is kept as a
// free-text description of the estimate.
func ParseQtyValue(message string) Intent {
	msg := textnorm.Normalize(message)
	raw := strings.TrimSpace(message)

	if IsUncertain(message) {
		return Intent{Name: IntentQtyValueUnknown, Message: "Estimativa de quantidades e valores não informada."}
	}
	if IsVagueAck(message) || containsAny(msg, []string{"seguir", "prosseguir", "so isso", "apenas isso", "nada mais"}) {
		return Intent{Name: IntentMarkDone, Message: "Estimativa concluída."}
	}

	payload := map[string]any{"raw": raw}
	found := false

	if m := qtyUnitRe.FindStringSubmatch(msg); m != nil {
		qty, _ := strconv.ParseFloat(m[1], 64)
		payload["quantity"] = qty
		payload["unit"] = m[2]
		found = true
	}

	if m := currencyRe.FindStringSubmatch(msg); m != nil {
		payload["value"] = scaledAmount(m[1], m[2])
		found = true
	} else if m := scaledRe.FindStringSubmatch(msg); m != nil {
		payload["value"] = scaledAmount(m[1], m[2])
		found = true
	}

	if !found {
		if m := bareQtyRe.FindStringSubmatch(msg); m != nil {
			qty, _ := strconv.ParseFloat(m[1], 64)
			payload["quantity"] = qty
			found = true
		}
	}

	if found {
		if containsAny(msg, []string{"ano", "anual", "anuais"}) {
			payload["period"] = "ano"
		} else if containsAny(msg, []string{"mes", "mensal", "mensais"}) {
			payload["period"] = "mes"
		}
		return Intent{Name: IntentQtyValueSet, Message: "Estimativa registrada.", Payload: payload}
	}

	if raw != "" {
		return Intent{Name: IntentQtyValueText, Message: "Descrição da estimativa registrada.", Payload: map[string]any{"text": raw}}
	}

	return Intent{Name: IntentUnclear, Message: "Quais as quantidades estimadas e o valor previsto? Pode informar, por exemplo, \"10 unidades, R$ 1,2 milhões por ano\"."}
}

// scaledAmount converts "1,2" + "milhoes" into 1200000. Dots are thousand
// separators and commas are the decimal mark, as written in PT-BR.
func scaledAmount(num, scale string) float64 {
	num = strings.ReplaceAll(num, ".", "")
	num = strings.ReplaceAll(num, ",", ".")
	v, _ := strconv.ParseFloat(num, 64)
	switch scale {
	case "mil", "k":
		v *= 1_000
	case "milhao", "milhoes", "mi":
		v *= 1_000_000
	}
	return v
}
