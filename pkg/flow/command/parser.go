// FILE: pkg/flow/command/parser.go
// PURPOSE: Natural-language requirement edit commands - ORDER MATTERS in the cascade

package command

import (
	"regexp"
	"strconv"
	"strings"

	"etp-authoring-be/pkg/flow/stage"
	"etp-authoring-be/pkg/flow/textnorm"
)

// Type is the closed set of structured command variants.
type Type string

const (
	TypeAcceptAll        Type = "accept_all"
	TypeReplace          Type = "replace_one"
	TypeRemove           Type = "remove_one"
	TypeAppend           Type = "append_one"
	TypeRegenerateAll    Type = "regenerate_all"
	TypeKeepOnly         Type = "keep_only"
	TypeRestartNecessity Type = "restart_necessity"
	TypeConfirm          Type = "confirm"
	TypeEdit             Type = "edit"
	TypeUnclear          Type = "unclear"
)

// Command is the interpreter output. Targets are 1-based positions into the
// requirement list as it stood at interpretation time.
type Command struct {
	Type    Type
	Targets []int
	Payload string
	Message string
}

var (
	restartPatterns = []*regexp.Regexp{
		regexp.MustCompile(`nova\s+necessidade`),
		regexp.MustCompile(`trocar\s+a\s+necessidade`),
		regexp.MustCompile(`na\s+verdade\s+a\s+necessidade\s+e`),
		regexp.MustCompile(`mudou\s+a\s+necessidade`),
		regexp.MustCompile(`preciso\s+trocar\s+a\s+necessidade`),
	}

	regenerateAllPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\brefaz(er)?\s+tudo\b`),
		regexp.MustCompile(`\bgera(r)?\s+tudo\s+de\s+novo\b`),
		regexp.MustCompile(`\bregenerar?\s+tudo\b`),
		regexp.MustCompile(`\btudo\s+de\s+novo\b`),
	}

	rIdPattern    = regexp.MustCompile(`\br(\d+)\b`)
	bareIntRe     = regexp.MustCompile(`\b(\d+)\b`)
	rangePattern  = regexp.MustCompile(`\b(\d+)\s*(?:-|a)\s*(\d+)\b`)
	colonTailRe   = regexp.MustCompile(`:\s*(.+)$`)
	replaceTailRe = regexp.MustCompile(`\b(?:para|por|com)\s+(.+)$`)
	appendTailRe  = regexp.MustCompile(`\b(?:sobre|de)\s+(.+)$`)
)

var (
	removeVerbs   = []string{"remover", "remova", "tirar", "tira", "excluir", "exclua", "deletar", "retirar", "apagar", "apague"}
	keepOnlyWords = []string{"manter apenas", "so manter", "manter so", "manter somente", "apenas os", "apenas o", "apenas"}
	editVerbs     = []string{"alterar", "modificar", "trocar", "troca", "mudar", "editar", "ajustar", "ajuste", "melhorar", "melhore", "aprimorar", "refinar", "corrigir", "substituir", "substitua"}
	addVerbs      = []string{"adicionar", "adicione", "incluir", "inclua", "acrescentar", "acrescente", "novo requisito", "mais um"}
)

// Parse classifies a free-form message against the requirement list length.
// The cascade is evaluated top to bottom; first match wins. listLen is the
// length of the requirement list at the moment of interpretation, used to
// resolve ordinals and to reject stray numbers that are not positions.
func Parse(message string, listLen int) Command {
	if strings.TrimSpace(message) == "" {
		return Command{Type: TypeUnclear, Message: "Mensagem vazia ou inválida"}
	}

	normalized := textnorm.Normalize(message)

	// 1. Explicit necessity restart always wins: it must fire even when the
	// phrase also contains edit verbs ("trocar a necessidade").
	for _, p := range restartPatterns {
		if p.MatchString(normalized) {
			return Command{
				Type:    TypeRestartNecessity,
				Payload: extractColonTail(message),
				Message: "Detectada solicitação para reiniciar a necessidade",
			}
		}
	}

	// 2. Numeric/ordinal targets, resolved against the current list length.
	targets := ExtractTargets(normalized, listLen)

	// 3. Remove family.
	if containsAnyWord(normalized, removeVerbs) {
		if len(targets) == 0 {
			return Command{Type: TypeUnclear, Message: "Não consegui identificar quais requisitos remover. Pode indicar os números?"}
		}
		return Command{Type: TypeRemove, Targets: targets, Message: "Requisitos removidos"}
	}

	// 4. Keep-only must be checked before the edit and confirmation families:
	// "manter apenas 1 e 3" contains the confirmation word "manter".
	if containsAny(normalized, keepOnlyWords) && len(targets) > 0 {
		return Command{Type: TypeKeepOnly, Targets: targets, Message: "Mantidos apenas os requisitos indicados"}
	}

	// 5. Replace/edit family, trailing clause captured as payload.
	if containsAnyWord(normalized, editVerbs) {
		if len(targets) == 0 {
			return Command{Type: TypeUnclear, Message: "Qual requisito você quer ajustar? Pode indicar o número."}
		}
		payload := extractColonTail(message)
		if payload == "" {
			payload = extractTail(normalized, replaceTailRe)
		}
		return Command{Type: TypeEdit, Targets: targets, Payload: payload, Message: "Requisito marcado para edição"}
	}

	// 6. Add family.
	if verb, ok := firstMatch(normalized, addVerbs); ok {
		payload := extractColonTail(message)
		if payload == "" {
			payload = extractTail(normalized, appendTailRe)
		}
		if payload == "" {
			// fall back to everything after the verb
			if idx := strings.Index(normalized, verb); idx >= 0 {
				payload = strings.TrimSpace(normalized[idx+len(verb):])
			}
		}
		return Command{Type: TypeAppend, Payload: payload, Message: "Novo requisito adicionado"}
	}

	// 7. Global regenerate.
	for _, p := range regenerateAllPatterns {
		if p.MatchString(normalized) {
			return Command{Type: TypeRegenerateAll, Message: "Requisitos serão gerados novamente"}
		}
	}

	// 8. Confirmation vocabulary (shared with the state machine).
	if stage.IsUserConfirmed(message) {
		return Command{Type: TypeConfirm, Message: "Requisitos confirmados"}
	}

	// 9. Nothing matched: ask a specific question, never "comando não reconhecido".
	return Command{
		Type:    TypeUnclear,
		Message: "Você quer ajustar, remover ou incluir algum requisito? Ou está tudo certo para seguir?",
	}
}

// ExtractTargets resolves R<n> ids, bare integers, ranges ("2-4", "2 a 4")
// and positional ordinals against the current list length. Results are
// unique, ascending, 1-based.
func ExtractTargets(normalized string, listLen int) []int {
	seen := map[int]bool{}
	var out []int
	add := func(n int) {
		if n >= 1 && n <= listLen && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	for _, m := range rangePattern.FindAllStringSubmatch(normalized, -1) {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if start <= end && end <= listLen {
			for i := start; i <= end; i++ {
				add(i)
			}
		}
	}

	for _, m := range rIdPattern.FindAllStringSubmatch(normalized, -1) {
		n, _ := strconv.Atoi(m[1])
		add(n)
	}

	for _, m := range bareIntRe.FindAllStringSubmatch(normalized, -1) {
		n, _ := strconv.Atoi(m[1])
		add(n)
	}

	// Ordinals resolve against the list length at interpretation time.
	if strings.Contains(normalized, "penultim") {
		add(listLen - 1)
	}
	if strings.Contains(normalized, "ultim") && !strings.Contains(normalized, "penultim") {
		add(listLen)
	}
	if strings.Contains(normalized, "primeir") {
		add(1)
	}

	sortInts(out)
	return out
}

func extractColonTail(message string) string {
	if m := colonTailRe.FindStringSubmatch(message); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractTail(normalized string, re *regexp.Regexp) string {
	if m := re.FindStringSubmatch(normalized); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsAnyWord(s string, words []string) bool {
	_, ok := firstMatch(s, words)
	return ok
}

func firstMatch(s string, words []string) (string, bool) {
	fields := " " + s + " "
	for _, w := range words {
		if strings.Contains(w, " ") {
			if strings.Contains(s, w) {
				return w, true
			}
			continue
		}
		if strings.Contains(fields, " "+w+" ") {
			return w, true
		}
	}
	return "", false
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}
