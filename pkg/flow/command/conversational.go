// FILE: pkg/flow/command/conversational.go
// PURPOSE: Free-form conversational intents outside the edit-command grammar

package command

import (
	"etp-authoring-be/pkg/flow/textnorm"
)

const (
	IntentReject   = "reject_current"
	IntentApprove  = "approve_current"
	IntentContinue = "continue"
	IntentModify   = "modify_current"
	IntentShowAll  = "show_all"
	IntentAddNew   = "add_new"
	IntentFinish   = "finish"
)

// ParseConversational classifies loose conversational replies. It is the
// last interpreter consulted and still never answers with a bare
// "not recognized": the unclear branch carries a concrete question.
func ParseConversational(message string) Intent {
	if message == "" {
		return Intent{Name: IntentUnclear, Message: "Não entendi. Pode repetir?"}
	}
	msg := textnorm.Normalize(message)

	if containsAny(msg, []string{"nao gostei", "nao gosto", "nao quero", "nao serve", "inadequado", "sugere outro", "pode sugerir outro", "outro requisito", "nao funciona", "nao combina"}) {
		return Intent{Name: IntentReject, Message: "Entendi que você não gostou. Vou sugerir uma alternativa."}
	}
	if IsVagueAck(message) || containsAny(msg, []string{"esta bom", "otimo", "excelente", "ideal", "adequado", "pode ser", "concordo", "aceito", "aprovado", "beleza"}) {
		return Intent{Name: IntentApprove, Message: "Ótimo! Vamos em frente."}
	}
	if containsAny(msg, []string{"proximo", "continuar", "avancar", "vamos em frente", "siga", "prosseguir", "e agora", "qual o proximo"}) {
		return Intent{Name: IntentContinue, Message: "Vamos para o próximo ponto."}
	}
	if containsAny(msg, []string{"alterar", "modificar", "trocar", "mudar", "editar", "ajustar", "melhorar", "aprimorar", "refinar", "corrigir"}) {
		return Intent{Name: IntentModify, Message: "Vou ajustar conforme solicitado.", Payload: map[string]any{"request": message}}
	}
	if containsAny(msg, []string{"mostrar todos", "ver todos", "listar todos", "todos os requisitos", "resumo", "lista completa", "o que temos ate agora"}) {
		return Intent{Name: IntentShowAll, Message: "Aqui está o que temos até agora:"}
	}
	if containsAny(msg, []string{"adicionar", "incluir", "acrescentar", "novo requisito", "mais um", "tambem precisa", "faltou", "esqueceu"}) {
		return Intent{Name: IntentAddNew, Message: "Vou adicionar esse item.", Payload: map[string]any{"text": message}}
	}
	if containsAny(msg, []string{"finalizar", "terminar", "pronto", "e isso", "so isso", "suficiente", "pode gerar", "vamos gerar"}) {
		return Intent{Name: IntentFinish, Message: "Perfeito! Vou consolidar as informações e preparar o documento."}
	}

	return Intent{Name: IntentUnclear, Message: "Não entendi bem. Você pode me dizer se está de acordo, se quer modificar algo ou se prefere seguir para a próxima etapa?"}
}
