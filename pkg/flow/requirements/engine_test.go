package requirements

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"etp-authoring-be/pkg/flow"
	"etp-authoring-be/pkg/flow/command"
)

func seedList(n int) []flow.Requirement {
	out := make([]flow.Requirement, n)
	for i := range out {
		out[i] = flow.Requirement{Id: fmt.Sprintf("R%d", i+1), Text: fmt.Sprintf("requisito %d", i+1)}
	}
	return out
}

func assertNumbered(t *testing.T, list []flow.Requirement) {
	t.Helper()
	for i, r := range list {
		assert.Equal(t, fmt.Sprintf("R%d", i+1), r.Id)
	}
}

func TestApplyRemove(t *testing.T) {
	got := Apply(command.Command{Type: command.TypeRemove, Targets: []int{2, 4}}, seedList(5))

	assert.Len(t, got, 3)
	assert.Equal(t, "requisito 1", got[0].Text)
	assert.Equal(t, "requisito 3", got[1].Text)
	assert.Equal(t, "requisito 5", got[2].Text)
	assertNumbered(t, got)
}

func TestApplyKeepOnly(t *testing.T) {
	got := Apply(command.Command{Type: command.TypeKeepOnly, Targets: []int{1, 3}}, seedList(5))

	assert.Len(t, got, 2)
	assert.Equal(t, "requisito 1", got[0].Text)
	assert.Equal(t, "requisito 3", got[1].Text)
	assertNumbered(t, got)
}

func TestApplyAppend(t *testing.T) {
	got := Apply(command.Command{Type: command.TypeAppend, Payload: "garantia estendida"}, seedList(3))

	assert.Len(t, got, 4)
	assert.Equal(t, "garantia estendida", got[3].Text)
	assert.Equal(t, "R4", got[3].Id)
}

func TestApplyAppendEmptyPayloadUsesPlaceholder(t *testing.T) {
	got := Apply(command.Command{Type: command.TypeAppend}, seedList(3))

	assert.Len(t, got, 4)
	assert.Equal(t, PlaceholderText, got[3].Text)
}

func TestApplyEdit(t *testing.T) {
	got := Apply(command.Command{Type: command.TypeEdit, Targets: []int{3}, Payload: "novo texto aqui"}, seedList(5))

	assert.Equal(t, "novo texto aqui", got[2].Text)
	assert.Equal(t, "requisito 2", got[1].Text)
	assertNumbered(t, got)
}

func TestApplyEditOutOfRangeIsNoop(t *testing.T) {
	list := seedList(3)
	got := Apply(command.Command{Type: command.TypeEdit, Targets: []int{9}, Payload: "texto"}, list)

	assert.Equal(t, list, got)
}

func TestApplyEditEmptyPayloadIsNoop(t *testing.T) {
	list := seedList(3)
	got := Apply(command.Command{Type: command.TypeEdit, Targets: []int{2}, Payload: "  "}, list)

	assert.Equal(t, list, got)
}

func TestApplyNonListCommandsLeaveInputUntouched(t *testing.T) {
	list := seedList(4)
	for _, typ := range []command.Type{
		command.TypeAcceptAll,
		command.TypeConfirm,
		command.TypeRegenerateAll,
		command.TypeRestartNecessity,
		command.TypeUnclear,
	} {
		got := Apply(command.Command{Type: typ, Targets: []int{1}}, list)
		assert.Equal(t, list, got, "type %s must not change the list", typ)
	}
}

func TestApplyNeverMutatesInput(t *testing.T) {
	list := seedList(5)
	Apply(command.Command{Type: command.TypeRemove, Targets: []int{1}}, list)
	Apply(command.Command{Type: command.TypeEdit, Targets: []int{2}, Payload: "x"}, list)

	assert.Equal(t, seedList(5), list)
}

func TestRenumberingHoldsAcrossOperationSequence(t *testing.T) {
	list := seedList(6)

	ops := []command.Command{
		{Type: command.TypeRemove, Targets: []int{2, 5}},
		{Type: command.TypeAppend, Payload: "suporte 24x7"},
		{Type: command.TypeEdit, Targets: []int{1}, Payload: "necessidade revista"},
		{Type: command.TypeKeepOnly, Targets: []int{1, 2, 4}},
		{Type: command.TypeRemove, Targets: []int{2}},
	}

	for _, op := range ops {
		list = Apply(op, list)
		assertNumbered(t, list)
	}
	assert.Len(t, list, 2)
}

func TestFromTexts(t *testing.T) {
	got := FromTexts([]string{"um", "  ", "dois", ""})

	assert.Len(t, got, 2)
	assert.Equal(t, "R1", got[0].Id)
	assert.Equal(t, "dois", got[1].Text)
}
