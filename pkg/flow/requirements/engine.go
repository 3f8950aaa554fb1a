// FILE: pkg/flow/requirements/engine.go
// PURPOSE: Pure list transformations over the requirement list

package requirements

import (
	"fmt"
	"strings"

	"etp-authoring-be/pkg/flow"
	"etp-authoring-be/pkg/flow/command"
)

// PlaceholderText is appended when an add command arrives without content.
// The user is asked to fill it in on the next turn.
const PlaceholderText = "Novo requisito (descreva o conteúdo)"

// Apply executes a structured command against the requirement list and
// returns the resulting list. The input slice is never mutated. Every
// result is renumbered before returning, so ids are always R1..Rk with
// no gaps regardless of what the command did. Commands that carry no
// list semantics (confirm, accept_all, regenerate_all, restart, unclear)
// return the list unchanged.
func Apply(cmd command.Command, list []flow.Requirement) []flow.Requirement {
	switch cmd.Type {
	case command.TypeRemove:
		return Renumber(remove(list, cmd.Targets))

	case command.TypeKeepOnly:
		return Renumber(keepOnly(list, cmd.Targets))

	case command.TypeAppend:
		text := strings.TrimSpace(cmd.Payload)
		if text == "" {
			text = PlaceholderText
		}
		out := clone(list)
		out = append(out, flow.Requirement{Text: text})
		return Renumber(out)

	case command.TypeEdit, command.TypeReplace:
		return Renumber(replace(list, cmd.Targets, cmd.Payload))

	default:
		return clone(list)
	}
}

// Renumber recomputes positional ids so that list[i].Id == "R<i+1>".
// It mutates and returns the same slice.
func Renumber(list []flow.Requirement) []flow.Requirement {
	for i := range list {
		list[i].Id = fmt.Sprintf("R%d", i+1)
	}
	return list
}

// FromTexts builds a renumbered list from plain texts, dropping blanks.
func FromTexts(texts []string) []flow.Requirement {
	out := make([]flow.Requirement, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, flow.Requirement{Text: t})
	}
	return Renumber(out)
}

func remove(list []flow.Requirement, targets []int) []flow.Requirement {
	drop := targetSet(targets)
	out := make([]flow.Requirement, 0, len(list))
	for i, r := range list {
		if drop[i+1] {
			continue
		}
		out = append(out, r)
	}
	return out
}

func keepOnly(list []flow.Requirement, targets []int) []flow.Requirement {
	keep := targetSet(targets)
	out := make([]flow.Requirement, 0, len(targets))
	for i, r := range list {
		if keep[i+1] {
			out = append(out, r)
		}
	}
	return out
}

// replace substitutes the payload text at each in-range target. An empty
// payload or an out-of-range target leaves the list untouched: an edit
// the engine cannot honor must not corrupt positions.
func replace(list []flow.Requirement, targets []int, payload string) []flow.Requirement {
	out := clone(list)
	text := strings.TrimSpace(payload)
	if text == "" {
		return out
	}
	for _, t := range targets {
		if t >= 1 && t <= len(out) {
			out[t-1].Text = text
		}
	}
	return out
}

func targetSet(targets []int) map[int]bool {
	s := make(map[int]bool, len(targets))
	for _, t := range targets {
		s[t] = true
	}
	return s
}

func clone(list []flow.Requirement) []flow.Requirement {
	out := make([]flow.Requirement, len(list))
	copy(out, list)
	return out
}
