package command

import (
	"reflect"
	"testing"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		listLen     int
		wantType    Type
		wantTargets []int
		wantPayload string
	}{
		{
			name:        "adjust last",
			message:     "ajustar o último",
			listLen:     5,
			wantType:    TypeEdit,
			wantTargets: []int{5},
		},
		{
			name:        "remove two and four",
			message:     "remover 2 e 4",
			listLen:     5,
			wantType:    TypeRemove,
			wantTargets: []int{2, 4},
		},
		{
			name:        "edit with colon payload",
			message:     "trocar 3: novo texto aqui",
			listLen:     5,
			wantType:    TypeEdit,
			wantTargets: []int{3},
			wantPayload: "novo texto aqui",
		},
		{
			name:     "plain confirmation",
			message:  "pode manter",
			listLen:  5,
			wantType: TypeConfirm,
		},
		{
			name:        "necessity restart with payload",
			message:     "nova necessidade: gestão de frota",
			listLen:     5,
			wantType:    TypeRestartNecessity,
			wantPayload: "gestão de frota",
		},
		{
			name:        "keep only despite confirmation word",
			message:     "manter apenas 1 e 3",
			listLen:     5,
			wantType:    TypeKeepOnly,
			wantTargets: []int{1, 3},
		},
		{
			name:        "remove range with dash",
			message:     "remova os requisitos 2-4",
			listLen:     6,
			wantType:    TypeRemove,
			wantTargets: []int{2, 3, 4},
		},
		{
			name:        "remove range with a",
			message:     "tirar de 2 a 4",
			listLen:     6,
			wantType:    TypeRemove,
			wantTargets: []int{2, 3, 4},
		},
		{
			name:        "remove by R id",
			message:     "excluir o R3",
			listLen:     5,
			wantType:    TypeRemove,
			wantTargets: []int{3},
		},
		{
			name:        "append with sobre payload",
			message:     "adicionar um requisito sobre garantia estendida",
			listLen:     5,
			wantType:    TypeAppend,
			wantPayload: "garantia estendida",
		},
		{
			name:     "regenerate everything",
			message:  "refazer tudo",
			listLen:  5,
			wantType: TypeRegenerateAll,
		},
		{
			name:     "restart beats edit verb",
			message:  "preciso trocar a necessidade",
			listLen:  5,
			wantType: TypeRestartNecessity,
		},
		{
			name:     "remove without target asks back",
			message:  "remover",
			listLen:  5,
			wantType: TypeUnclear,
		},
		{
			name:     "edit without target asks back",
			message:  "quero ajustar",
			listLen:  5,
			wantType: TypeUnclear,
		},
		{
			name:     "empty message",
			message:  "   ",
			listLen:  5,
			wantType: TypeUnclear,
		},
		{
			name:     "gibberish falls through to unclear",
			message:  "asdf qwerty",
			listLen:  5,
			wantType: TypeUnclear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.message, tt.listLen)

			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if tt.wantTargets != nil && !reflect.DeepEqual(got.Targets, tt.wantTargets) {
				t.Errorf("Targets = %v, want %v", got.Targets, tt.wantTargets)
			}
			if tt.wantPayload != "" && got.Payload != tt.wantPayload {
				t.Errorf("Payload = %q, want %q", got.Payload, tt.wantPayload)
			}
			if got.Type == TypeUnclear && got.Message == "" {
				t.Error("unclear command must carry a clarifying question")
			}
		})
	}
}

func TestExtractTargets(t *testing.T) {
	tests := []struct {
		name    string
		message string
		listLen int
		want    []int
	}{
		{"single bare int", "o 3", 5, []int{3}},
		{"out of range dropped", "o 9", 5, nil},
		{"duplicates collapsed", "2 e 2 e o r2", 5, []int{2}},
		{"ordinal last", "o ultimo", 5, []int{5}},
		{"ordinal penultimate", "o penultimo", 5, []int{4}},
		{"ordinal first", "o primeiro", 5, []int{1}},
		{"mixed sorted ascending", "4, o primeiro e r2", 5, []int{1, 2, 4}},
		{"range beyond length keeps only in-range ints", "2 a 9", 5, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTargets(tt.message, tt.listLen)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTargets(%q, %d) = %v, want %v", tt.message, tt.listLen, got, tt.want)
			}
		})
	}
}
