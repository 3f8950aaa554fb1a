// FILE: pkg/flow/command/price.go
// PURPOSE: Price research answer interpreter

package command

import (
	"regexp"
	"strconv"

	"etp-authoring-be/pkg/flow/textnorm"
)

const (
	IntentMethodSelect  = "method_select"
	IntentSupplierCount = "supplier_count"
	IntentLinkEvidence  = "link_evidence"
	IntentMarkDone      = "mark_done"
)

var (
	urlRe        = regexp.MustCompile(`https?://\S+`)
	smallIntRe   = regexp.MustCompile(`\b(\d{1,3})\b`)
	supplierHint = []string{"fornecedor", "fornecedores", "empresas", "cotacoes"}

	// keyword → canonical method; iterated in declaration order so the more
	// specific "painel de precos" wins over bare "painel".
	priceMethodTable = []struct{ keyword, method string }{
		{"painel de precos", "painel_de_precos"},
		{"painel", "painel_de_precos"},
		{"cotacao", "cotacoes_fornecedores"},
		{"cotacoes", "cotacoes_fornecedores"},
		{"fornecedor", "cotacoes_fornecedores"},
		{"historico", "historico_contratos"},
		{"pregao anterior", "historico_contratos"},
		{"marketplace", "marketplace"},
	}
)

// ParsePriceResearch interprets a reply in the price research phase.
// Supplier counts are checked before method keywords: "3 fornecedores"
// contains the method keyword "fornecedor" but is a count, not a method.
func ParsePriceResearch(message string) Intent {
	msg := textnorm.Normalize(message)

	if containsAny(msg, supplierHint) {
		if m := smallIntRe.FindStringSubmatch(msg); m != nil {
			count, _ := strconv.Atoi(m[1])
			return Intent{
				Name:    IntentSupplierCount,
				Message: "Quantidade de fornecedores registrada.",
				Payload: map[string]any{"count": count},
			}
		}
	}

	// URLs beat method keywords: a pasted link is evidence regardless of
	// the words around it.
	if urls := urlRe.FindAllString(message, -1); len(urls) > 0 {
		return Intent{
			Name:    IntentLinkEvidence,
			Message: "Link de evidência registrado.",
			Payload: map[string]any{"urls": urls},
		}
	}

	for _, row := range priceMethodTable {
		if containsAny(msg, []string{row.keyword}) {
			return Intent{
				Name:    IntentMethodSelect,
				Message: "Método definido: " + row.method + ".",
				Payload: map[string]any{"method": row.method},
			}
		}
	}

	if containsAny(msg, []string{"concluido", "finalizei", "pronto", "seguir", "prosseguir"}) {
		return Intent{Name: IntentMarkDone, Message: "Pesquisa de preços concluída."}
	}

	return Intent{Name: IntentUnclear, Message: "Não entendi sua informação sobre pesquisa de preços. Você usou painel de preços, cotações com fornecedores, histórico de contratos ou marketplace?"}
}
