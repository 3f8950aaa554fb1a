// FILE: pkg/flow/guard/guard.go
// PURPOSE: Payload floor for generated responses - the pipeline never
// forwards an empty or under-filled payload to the user

package guard

import (
	"fmt"
	"regexp"
	"strings"

	"etp-authoring-be/pkg/flow"
)

// RequirementsPayload is the generated requirement suggestion block.
type RequirementsPayload struct {
	Intro     string   `json:"intro"`
	Items     []string `json:"items"`
	Rationale string   `json:"rationale"`
}

// StrategiesPayload is the generated contracting-strategy block.
type StrategiesPayload struct {
	Intro      string          `json:"intro"`
	Strategies []flow.Strategy `json:"strategies"`
}

// MinRequirements is the floor below which the deterministic template
// replaces whatever the generator produced.
const MinRequirements = 8

var (
	commandPatternRe = regexp.MustCompile(`(?i)\b(adicionar:|remover:|editar:)`)
	numberPrefixRe   = regexp.MustCompile(`^\s*\d+[.)]\s*`)

	blockedTitles = []string{"justificativa", "nota tecnica", "nota técnica"}

	onboardingFillerRe = regexp.MustCompile(`(?i)(vamos come[çc]ar|posso seguir|ol[áa]! sou|sou seu assistente)`)
)

// EnsureRequirements validates and repairs a requirements payload. Items
// are stripped of command patterns and interrogatives; if fewer than
// MinRequirements survive, the whole list is replaced by the template
// parameterized by the necessity. Intro and rationale are backfilled
// when blank. The result always satisfies the payload floor.
func EnsureRequirements(p RequirementsPayload, necessity string) RequirementsPayload {
	var items []string
	for _, it := range p.Items {
		it = Sanitize(it)
		it = numberPrefixRe.ReplaceAllString(it, "")
		it = strings.TrimSpace(it)
		if it == "" || strings.HasSuffix(it, "?") {
			continue
		}
		items = append(items, it)
	}
	if len(items) < MinRequirements {
		items = FallbackRequirements(necessity)
	}
	p.Items = items

	if strings.TrimSpace(p.Intro) == "" {
		p.Intro = fmt.Sprintf(
			"Entendi sua necessidade: %s. Vou propor requisitos objetivos e verificáveis alinhados a segurança, disponibilidade e conformidade.",
			truncateRunes(necessity, 80),
		)
	}
	if strings.TrimSpace(p.Rationale) == "" {
		p.Rationale = "Os requisitos priorizam conformidade regulatória, segurança operacional, disponibilidade contratual e mensuração por indicadores objetivos."
	}
	return p
}

// EnsureStrategies guarantees at least two complete strategies; below
// that the four canned contracting options replace the payload.
func EnsureStrategies(p StrategiesPayload, necessity string) StrategiesPayload {
	var complete []flow.Strategy
	for _, s := range p.Strategies {
		if strings.TrimSpace(s.Title) == "" || len(s.Advantages) == 0 || len(s.Risks) == 0 {
			continue
		}
		complete = append(complete, s)
	}
	if len(complete) < 2 {
		complete = FallbackStrategies(necessity)
	}
	p.Strategies = complete

	if strings.TrimSpace(p.Intro) == "" {
		p.Intro = "Considerando o contexto, apresento as principais estratégias de contratação aplicáveis:"
	}
	return p
}

// EnsureLegal backfills the legal basis with the general statute when
// the generator produced nothing usable.
func EnsureLegal(a *flow.LegalBasisAnswer) *flow.LegalBasisAnswer {
	if a == nil {
		a = &flow.LegalBasisAnswer{}
	}
	if strings.TrimSpace(a.Text) == "" {
		a.Text = "Lei 14.133/2021 — Nova Lei de Licitações e Contratos Administrativos"
	}
	return a
}

// EnsureSummary backfills an empty executive summary.
func EnsureSummary(summary, necessity string) string {
	if strings.TrimSpace(summary) != "" {
		return summary
	}
	return fmt.Sprintf("Necessidade: %s\n\nRequisitos e estratégias consolidados estão em elaboração.", necessity)
}

// Sanitize strips command patterns, onboarding filler and blocked
// section titles from generated text. Title lines are dropped whole;
// inline matches are removed and whitespace re-collapsed.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if isBlockedTitleLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = commandPatternRe.ReplaceAllString(text, "")
	text = onboardingFillerRe.ReplaceAllString(text, "")

	return strings.Join(strings.Fields(text), " ")
}

// FallbackRequirements is the deterministic 12-item template. The
// necessity is embedded truncated to 60 runes so the first item still
// names what is being procured.
func FallbackRequirements(necessity string) []string {
	base := truncateRunes(strings.TrimSpace(necessity), 60)
	if base == "" {
		base = "contratação"
	}
	return []string{
		fmt.Sprintf("Atender plenamente à necessidade de %s conforme especificações técnicas e requisitos funcionais mínimos", base),
		"Garantir conformidade com Lei 14.133/2021, legislação aplicável e normas técnicas do setor",
		"Fornecedor com experiência comprovada mínima de 2 anos em contratos similares",
		"Disponibilidade mínima de 99,5% mensal, com penalidades proporcionais por descumprimento",
		"Garantia contra defeitos de fabricação/execução pelo prazo mínimo de 12 meses",
		"Suporte técnico especializado em até 24 horas úteis, com SLA documentado",
		"Treinamento de equipe técnica com certificação reconhecida e material didático",
		"Documentação técnica completa em português brasileiro, incluindo manuais operacionais",
		"Compatibilidade técnica com infraestrutura e sistemas já existentes",
		"Relatórios mensais de desempenho, monitoramento e indicadores de qualidade",
		"Prazo de entrega ou início de execução em até 60 dias corridos após assinatura",
		"Conformidade com LGPD quando houver tratamento de dados pessoais",
	}
}

// FallbackStrategies is the canned four-option contracting menu used
// when the generator returns fewer than two usable strategies.
func FallbackStrategies(necessity string) []flow.Strategy {
	base := truncateRunes(strings.TrimSpace(necessity), 50)
	if base == "" {
		base = "bem ou serviço"
	}
	return []flow.Strategy{
		{
			Title:         "Contrato por Desempenho (Performance-Based)",
			WhenIndicated: fmt.Sprintf("Quando o foco está em resultados mensuráveis para %s", base),
			Advantages:    []string{"Pagamento vinculado a resultados", "Incentivo à qualidade", "Redução de riscos operacionais"},
			Risks:         []string{"Requer métricas bem definidas", "Dificuldade na mensuração inicial"},
		},
		{
			Title:         "Outsourcing Integral",
			WhenIndicated: "Para necessidades que exigem gestão completa e especializada",
			Advantages:    []string{"Transferência total da operação", "Equipe dedicada", "Foco no core business"},
			Risks:         []string{"Dependência do fornecedor", "Custo recorrente mais alto"},
		},
		{
			Title:         "Locação com Opção de Compra",
			WhenIndicated: "Quando há incerteza sobre a necessidade de longo prazo ou teste de viabilidade",
			Advantages:    []string{"Menor investimento inicial", "Flexibilidade contratual", "Possibilidade de aquisição futura"},
			Risks:         []string{"Custo total pode ser maior", "Limitações contratuais"},
		},
		{
			Title:         "Ata de Registro de Preços (ARP)",
			WhenIndicated: "Para demandas recorrentes ou de múltiplos órgãos",
			Advantages:    []string{"Flexibilidade de aquisição", "Preços registrados por 12 meses", "Permite carona"},
			Risks:         []string{"Requer demanda estimada", "Não garante fornecimento imediato"},
		},
	}
}

// isBlockedTitleLine reports whether a line is a standalone blocked
// section title (optionally numbered or bolded), as opposed to prose
// that merely mentions the word.
func isBlockedTitleLine(line string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(line))
	trimmed = strings.Trim(trimmed, "*#:- \t")
	trimmed = numberPrefixRe.ReplaceAllString(trimmed, "")
	for _, t := range blockedTitles {
		if trimmed == t {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
