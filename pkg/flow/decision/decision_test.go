package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"etp-authoring-be/pkg/flow"
	"etp-authoring-be/pkg/flow/stage"
)

func pendingSession() *flow.Session {
	s := flow.NewSession("s1")
	Ask(s, "Não encontrei previsão no PCA.", "Registrar a contratação como fora do PCA vigente.", stage.ConfirmRequirements)
	return s
}

func TestAskOccupiesSlotAndRendersThreeOptions(t *testing.T) {
	s := flow.NewSession("s1")
	prompt := Ask(s, "Proposta de base legal.", "Lei 14.133/2021", stage.ConfirmRequirements)

	assert.True(t, s.HasPendingDecision())
	assert.Contains(t, prompt, "1. Aceitar")
	assert.Contains(t, prompt, "2. Deixar pendente")
	assert.Contains(t, prompt, "3. Discutir")
	assert.Contains(t, prompt, "Lei 14.133/2021")
}

func TestConsumeNumericChoices(t *testing.T) {
	tests := []struct {
		message string
		want    Outcome
	}{
		{"1", OutcomeAccept},
		{"2", OutcomeDefer},
		{"3", OutcomeDiscuss},
	}

	for _, tt := range tests {
		s := pendingSession()
		got, handled := Consume(s, tt.message)

		assert.True(t, handled)
		assert.Equal(t, tt.want, got)
		assert.False(t, s.HasPendingDecision(), "recognized ruling must clear the slot")
	}
}

func TestConsumeKeywordChoices(t *testing.T) {
	tests := []struct {
		message string
		want    Outcome
	}{
		{"aceito a proposta", OutcomeAccept},
		{"pode deixar pendente", OutcomeDefer},
		{"quero discutir antes", OutcomeDiscuss},
	}

	for _, tt := range tests {
		s := pendingSession()
		got, handled := Consume(s, tt.message)

		assert.True(t, handled)
		assert.Equal(t, tt.want, got)
		assert.False(t, s.HasPendingDecision())
	}
}

func TestConsumeUnrelatedTextKeepsSlot(t *testing.T) {
	s := pendingSession()
	got, handled := Consume(s, "qual o prazo de entrega?")

	assert.True(t, handled)
	assert.Equal(t, OutcomeUnclear, got)
	assert.True(t, s.HasPendingDecision(), "unrelated message must keep the slot occupied")
}

func TestConsumeOutOfRangeNumberKeepsSlot(t *testing.T) {
	s := pendingSession()
	got, handled := Consume(s, "7")

	assert.True(t, handled)
	assert.Equal(t, OutcomeUnclear, got)
	assert.True(t, s.HasPendingDecision())
}

func TestConsumeWithoutSlotFallsThrough(t *testing.T) {
	s := flow.NewSession("s1")
	_, handled := Consume(s, "1")

	assert.False(t, handled)
}
