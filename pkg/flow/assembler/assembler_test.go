package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"etp-authoring-be/pkg/flow"
)

func TestAssembleEmptyPartsYieldsEmptyMap(t *testing.T) {
	got := Assemble(Parts{})
	assert.Empty(t, got)
}

func TestAssemblePopulatedParts(t *testing.T) {
	p := Parts{
		Necessity:        "Aquisição de notebooks para a secretaria",
		Requirements:     []string{"R1. Garantia de 12 meses", "R2. Suporte em 24h"},
		Recommendation:   "Ata de Registro de Preços (ARP)",
		PCAText:          "A contratação está prevista no Plano de Contratações Anual.",
		Norms:            []Norm{{Ref: "Lei 14.133/2021", Applies: "Base legal da contratação"}},
		QtyValueItems:    []flow.QtyValueItem{{Description: "Notebook", Quantity: 40, UnitValue: 4500}},
		ValueMethodology: "Painel de Preços + 3 cotações",
		InstallmentDec:   "A contratação será realizada em parcela única.",
		ExecutiveSummary: "Resumo executivo consolidado.",
	}

	got := Assemble(p)

	assert.Equal(t, "Resumo executivo consolidado.", got[SectionIntroducao])
	assert.Equal(t, p.Necessity, got[SectionDescNecessidade])
	assert.Equal(t, p.PCAText, got[SectionPrevisaoPCA])
	assert.Equal(t, "R1. Garantia de 12 meses\nR2. Suporte em 24h", got[SectionReqTecnicos])
	assert.Equal(t, "- Lei 14.133/2021: Base legal da contratação", got[SectionReqNormativos])
	assert.Equal(t, "- Notebook: 40 x 4500", got[SectionEstimativaQtd])
	assert.Equal(t, "- Notebook: 40 x 4500\n\nMetodologia: Painel de Preços + 3 cotações", got[SectionEstimativaValor])
	assert.Equal(t, p.Recommendation, got[SectionSolucaoComoUmTodo])
	assert.Equal(t, p.InstallmentDec, got[SectionJustParcelamento])
}

func TestAssembleMethodologyAloneStillWritesValueSection(t *testing.T) {
	got := Assemble(Parts{ValueMethodology: "mediana de cotações"})

	assert.Equal(t, "Metodologia: mediana de cotações", got[SectionEstimativaValor])
	assert.NotContains(t, got, SectionEstimativaQtd)
}

func TestAssembleAmountsStayDecimal(t *testing.T) {
	got := Assemble(Parts{QtyValueItems: []flow.QtyValueItem{{Description: "postos", Quantity: 3, UnitValue: 1200000}}})

	assert.Equal(t, "- postos: 3 x 1200000", got[SectionEstimativaQtd])
}

func TestAssembleOmitsEmptySections(t *testing.T) {
	got := Assemble(Parts{Necessity: "manutenção predial"})

	assert.Len(t, got, 1)
	assert.Contains(t, got, SectionDescNecessidade)
}

func TestAssembleInstallmentTextOnly(t *testing.T) {
	got := Assemble(Parts{InstallmentText: "Parcelamento em dois lotes regionais."})

	assert.Equal(t, "Parcelamento em dois lotes regionais.", got[SectionJustParcelamento])
}

func TestOrderCoversEverySection(t *testing.T) {
	order := Order()
	assert.Equal(t, SectionIntroducao, order[0])
	assert.Equal(t, SectionJustParcelamento, order[len(order)-1])

	seen := map[Section]bool{}
	for _, s := range order {
		assert.False(t, seen[s], "duplicate section %s", s)
		seen[s] = true
	}
	assert.Len(t, order, 9)
}

func TestFromSession(t *testing.T) {
	s := flow.NewSession("s1")
	s.Necessity = "aquisição de veículos"
	s.Requirements = []flow.Requirement{{Id: "R1", Text: "Garantia de fábrica"}}
	s.Answers.PCA = &flow.PCAAnswer{Status: "pendente"}
	s.Answers.LegalBasis = &flow.LegalBasisAnswer{Text: "Lei 14.133/2021", Notes: []string{"verificar regulamento local"}}
	s.Answers.Installment = &flow.InstallmentAnswer{Decision: "sim", Text: "dois lotes"}
	s.Answers.ExecutiveSummary = "resumo"

	p := FromSession(s)

	assert.Equal(t, []string{"Garantia de fábrica"}, p.Requirements)
	assert.Contains(t, p.PCAText, "Pendente")
	assert.Len(t, p.Norms, 2)
	assert.Equal(t, "A contratação será parcelada.", p.InstallmentDec)
	assert.Equal(t, "dois lotes", p.InstallmentText)

	sections := Assemble(p)
	assert.Contains(t, sections, SectionPrevisaoPCA)
	assert.Contains(t, sections, SectionJustParcelamento)
}
