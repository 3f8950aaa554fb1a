package stage

import (
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		current   Stage
		next      Stage
		confirmed bool
		wantOK    bool
	}{
		{"happy edge with confirmation", CollectNeed, SuggestRequirements, true, true},
		{"edge without confirmation rejected", CollectNeed, SuggestRequirements, false, false},
		{"refine self-loop needs no confirmation", RefineRequirements, RefineRequirements, false, true},
		{"refine to confirm requires vocabulary", RefineRequirements, ConfirmRequirements, false, false},
		{"refine to confirm with confirmation", RefineRequirements, ConfirmRequirements, true, true},
		{"skipping a stage rejected", CollectNeed, ConfirmRequirements, true, false},
		{"backwards rejected", ConfirmRequirements, CollectNeed, true, false},
		{"terminal has no outgoing edges", Finalize, Preview, true, false},
		{"unknown source stage", Stage("draft"), SuggestRequirements, true, false},
		{"unknown target stage", CollectNeed, Stage("draft"), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := Validate(tt.current, tt.next, tt.confirmed)
			if ok != tt.wantOK {
				t.Errorf("Validate(%s, %s, %v) = %v, want %v", tt.current, tt.next, tt.confirmed, ok, tt.wantOK)
			}
			if !ok && reason == "" {
				t.Error("rejected transition must carry a reason")
			}
		})
	}
}

func TestIsUserConfirmed(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"pode manter", true},
		{"ok, pode seguir", true},
		{"está bom assim", true},
		{"PERFEITO", true},
		{"confirmo", true},
		{"acerto de contas", false}, // "certo" must not match inside a word
		{"quero remover o 2", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := IsUserConfirmed(tt.message); got != tt.want {
				t.Errorf("IsUserConfirmed(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestNextAfterSuggestion(t *testing.T) {
	if got := NextAfterSuggestion(SuggestRequirements); got != RefineRequirements {
		t.Errorf("forced edge = %s, want %s", got, RefineRequirements)
	}
	if got := NextAfterSuggestion(Preview); got != Preview {
		t.Errorf("non-suggestion stage must not move, got %s", got)
	}
}

func TestCanGenerate(t *testing.T) {
	if ok, _ := CanGenerate(ConfirmRequirements, true); !ok {
		t.Error("generation from confirm_requirements with confirmation must be allowed")
	}
	if ok, reason := CanGenerate(RefineRequirements, true); ok || reason == "" {
		t.Error("generation outside confirm_requirements must be rejected with a reason")
	}
	if ok, reason := CanGenerate(ConfirmRequirements, false); ok || reason == "" {
		t.Error("generation without confirmation must be rejected with a reason")
	}
}

func TestNext(t *testing.T) {
	if got := Next(GenerateDocument); got != Preview {
		t.Errorf("Next(generate_document) = %s, want %s", got, Preview)
	}
	if got := Next(Finalize); got != Finalize {
		t.Errorf("Next on terminal = %s, want %s", got, Finalize)
	}
}
