// FILE: pkg/flow/decision/decision.go
// PURPOSE: Single-slot arbitration for proposals the user must rule on

package decision

import (
	"fmt"
	"strings"

	"etp-authoring-be/pkg/flow"
	"etp-authoring-be/pkg/flow/command"
	"etp-authoring-be/pkg/flow/stage"
	"etp-authoring-be/pkg/flow/textnorm"
)

// Outcome is the ruling extracted from the user's reply.
type Outcome string

const (
	OutcomeAccept  Outcome = "accept"
	OutcomeDefer   Outcome = "defer"
	OutcomeDiscuss Outcome = "discuss"
	OutcomeUnclear Outcome = "unclear"
)

// Ask occupies the session's decision slot with a proposal and returns
// the numbered prompt to send. Only one decision can be pending at a
// time; a second Ask overwrites the first.
func Ask(s *flow.Session, prompt, proposal string, st stage.Stage) string {
	s.PendingDecision = &flow.PendingDecision{
		Prompt:   prompt,
		Proposal: proposal,
		Stage:    st,
	}
	return Prompt(s.PendingDecision)
}

// Prompt renders the three fixed choices for a pending decision.
func Prompt(d *flow.PendingDecision) string {
	return fmt.Sprintf(
		"%s\n\nProposta: %s\n\n1. Aceitar a sugestão\n2. Deixar pendente e seguir\n3. Discutir antes de decidir\n\nResponda com o número da opção.",
		d.Prompt, d.Proposal,
	)
}

// Consume offers the inbound message to the pending decision. It must be
// called before any other interpretation while the slot is occupied. A
// recognized ruling clears the slot and returns it; an unrelated message
// keeps the slot occupied and returns OutcomeUnclear so the caller can
// re-present the choices.
func Consume(s *flow.Session, message string) (Outcome, bool) {
	if s.PendingDecision == nil {
		return OutcomeUnclear, false
	}

	outcome := classify(message)
	if outcome == OutcomeUnclear {
		return OutcomeUnclear, true
	}

	s.PendingDecision = nil
	return outcome, true
}

func classify(message string) Outcome {
	if n, ok := command.SelectNumber(message); ok {
		switch n {
		case 1:
			return OutcomeAccept
		case 2:
			return OutcomeDefer
		case 3:
			return OutcomeDiscuss
		}
		return OutcomeUnclear
	}

	msg := textnorm.Normalize(message)

	if command.IsExplicitPending(message) {
		return OutcomeDefer
	}
	if containsAny(msg, []string{"discutir", "conversar", "explica", "me explique", "quero entender", "duvida"}) {
		return OutcomeDiscuss
	}
	if containsAny(msg, []string{"aceito", "aceitar", "concordo", "pode ser", "ok", "sim"}) {
		return OutcomeAccept
	}

	return OutcomeUnclear
}

// containsAny matches short tokens as whole words so "ok"/"sim" never
// fire inside longer words.
func containsAny(s string, subs []string) bool {
	padded := " " + s + " "
	for _, sub := range subs {
		if len(sub) <= 3 {
			if strings.Contains(padded, " "+sub+" ") {
				return true
			}
			continue
		}
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
