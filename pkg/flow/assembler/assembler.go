// FILE: pkg/flow/assembler/assembler.go
// PURPOSE: The only code path that writes document section text

package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"etp-authoring-be/pkg/flow"
)

// Section is the stable key of one document section. The numeric prefix
// encodes document order; renderers must not rely on map iteration.
type Section string

const (
	SectionIntroducao        Section = "1_introducao"
	SectionDescNecessidade   Section = "2_4_descricao_necessidade"
	SectionPrevisaoPCA       Section = "2_5_previsao_pca"
	SectionReqTecnicos       Section = "3_1_requisitos_tecnicos"
	SectionReqNormativos     Section = "3_3_requisitos_normativos"
	SectionEstimativaQtd     Section = "4_estimativa_quantidades"
	SectionEstimativaValor   Section = "6_estimativa_valor"
	SectionSolucaoComoUmTodo Section = "7_solucao_como_um_todo"
	SectionJustParcelamento  Section = "8_justificativa_parcelamento"
)

// Norm is one normative reference with how it applies.
type Norm struct {
	Ref     string `json:"ref"`
	Applies string `json:"aplica"`
}

// Parts is the accumulator the conversation fills stage by stage. The
// assembler reads it; nothing else produces section text.
type Parts struct {
	Necessity        string              `json:"necessidade_texto,omitempty"`
	Requirements     []string            `json:"requisitos,omitempty"`
	Recommendation   string              `json:"recomendacao,omitempty"`
	PCAStatus        string              `json:"pca_status,omitempty"`
	PCAText          string              `json:"pca_texto,omitempty"`
	Norms            []Norm              `json:"normas,omitempty"`
	QtyValueItems    []flow.QtyValueItem `json:"itens_valor,omitempty"`
	ValueMethodology string              `json:"metodologia_valor,omitempty"`
	InstallmentDec   string              `json:"parcelamento_decisao,omitempty"`
	InstallmentText  string              `json:"parcelamento_texto,omitempty"`
	ExecutiveSummary string              `json:"resumo_executivo,omitempty"`
}

// Assemble maps the accumulated parts onto named sections. A section is
// present iff its source field is non-empty; an empty accumulator yields
// an empty map and no error.
func Assemble(p Parts) map[Section]string {
	out := map[Section]string{}

	if p.ExecutiveSummary != "" {
		out[SectionIntroducao] = p.ExecutiveSummary
	}
	if p.Necessity != "" {
		out[SectionDescNecessidade] = p.Necessity
	}
	if p.PCAText != "" {
		out[SectionPrevisaoPCA] = p.PCAText
	}
	if len(p.Requirements) > 0 {
		out[SectionReqTecnicos] = strings.Join(p.Requirements, "\n")
	}
	if len(p.Norms) > 0 {
		lines := make([]string, len(p.Norms))
		for i, n := range p.Norms {
			lines[i] = fmt.Sprintf("- %s: %s", n.Ref, n.Applies)
		}
		out[SectionReqNormativos] = strings.Join(lines, "\n")
	}
	if len(p.QtyValueItems) > 0 {
		lines := make([]string, len(p.QtyValueItems))
		for i, it := range p.QtyValueItems {
			lines[i] = fmt.Sprintf("- %s: %s x %s", it.Description, formatAmount(it.Quantity), formatAmount(it.UnitValue))
		}
		table := strings.Join(lines, "\n")
		out[SectionEstimativaQtd] = table
		out[SectionEstimativaValor] = table
	}
	if p.ValueMethodology != "" {
		value := strings.TrimSpace(out[SectionEstimativaValor] + "\n\nMetodologia: " + p.ValueMethodology)
		out[SectionEstimativaValor] = value
	}
	if p.Recommendation != "" {
		out[SectionSolucaoComoUmTodo] = p.Recommendation
	}
	if p.InstallmentDec != "" || p.InstallmentText != "" {
		out[SectionJustParcelamento] = strings.TrimSpace(p.InstallmentDec + "\n" + p.InstallmentText)
	}

	return out
}

// Order lists every section in document order, present or not.
func Order() []Section {
	return []Section{
		SectionIntroducao,
		SectionDescNecessidade,
		SectionPrevisaoPCA,
		SectionReqTecnicos,
		SectionReqNormativos,
		SectionEstimativaQtd,
		SectionEstimativaValor,
		SectionSolucaoComoUmTodo,
		SectionJustParcelamento,
	}
}

// FromSession builds the accumulator from a finished session. Answer
// fields marked "pendente" still appear; the explicit marker documents
// the open point instead of silently dropping the section.
func FromSession(s *flow.Session) Parts {
	p := Parts{
		Necessity:        s.Necessity,
		Requirements:     s.RequirementTexts(),
		ValueMethodology: s.Answers.ValueMethodology,
		QtyValueItems:    s.Answers.QtyValue,
		ExecutiveSummary: s.Answers.ExecutiveSummary,
		Recommendation:   s.Answers.StrategyChoice,
	}

	if pca := s.Answers.PCA; pca != nil {
		p.PCAStatus = pca.Status
		p.PCAText = pcaText(pca)
	}
	if lb := s.Answers.LegalBasis; lb != nil && lb.Text != "" {
		p.Norms = append(p.Norms, Norm{Ref: lb.Text, Applies: "Base legal da contratação"})
		for _, note := range lb.Notes {
			p.Norms = append(p.Norms, Norm{Ref: "Observação", Applies: note})
		}
	}
	if inst := s.Answers.Installment; inst != nil {
		p.InstallmentDec = installmentDecision(inst.Decision)
		p.InstallmentText = inst.Text
	}

	return p
}

// formatAmount renders amounts in plain decimal form; %g would switch
// to scientific notation at a million, which a document cannot carry.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pcaText(pca *flow.PCAAnswer) string {
	switch pca.Status {
	case "sim":
		if pca.Detail != "" {
			return "A contratação está prevista no Plano de Contratações Anual. " + pca.Detail
		}
		return "A contratação está prevista no Plano de Contratações Anual."
	case "nao":
		return "A contratação não consta do Plano de Contratações Anual vigente."
	case "pendente":
		return "Pendente: a previsão no Plano de Contratações Anual será confirmada."
	case "nao_informado":
		return "A previsão no Plano de Contratações Anual não foi informada."
	default:
		return pca.Detail
	}
}

func installmentDecision(decision string) string {
	switch decision {
	case "sim":
		return "A contratação será parcelada."
	case "nao":
		return "A contratação será realizada em parcela única."
	case "pendente":
		return "Pendente: a decisão sobre o parcelamento será confirmada."
	case "nao_informado":
		return ""
	default:
		return ""
	}
}
