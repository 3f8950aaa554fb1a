package constant

// User-facing PT-BR texts for each conversation stage. The reply text for
// a stage is always one of these or a guard/interpreter message; stages
// never emit document section titles.
const (
	MsgAskNecessity = "Olá! Para começarmos o Estudo Técnico Preliminar, descreva a necessidade da contratação: o que precisa ser adquirido ou contratado, e para quê?"

	MsgRefineHint = "Você pode editar os requisitos (ex.: \"remover 2 e 4\", \"trocar 3: novo texto\", \"adicionar um requisito sobre garantia\") ou confirmar a lista para avançarmos."

	MsgRequirementsConfirmed = "Requisitos confirmados. Agora vamos completar as demais informações do estudo."

	MsgAskStrategies  = "Considerando o contexto, estas são as estratégias de contratação aplicáveis. Qual faz mais sentido para o seu caso? Pode responder pelo número ou pelo nome."
	MsgAskPCA         = "Essa contratação está prevista no Plano de Contratações Anual (PCA)? Se souber, informe o item ou o número da previsão."
	MsgAskLegalBasis  = "Qual a base legal da contratação? Se preferir, posso sugerir a fundamentação aplicável."
	MsgAskQtyValue    = "Quais as quantidades estimadas e o valor previsto da contratação? Pode informar, por exemplo, \"10 unidades, R$ 1,2 milhões por ano\". Se ainda não souber, registramos como pendente."
	MsgAskPriceSearch = "Como foi (ou será) feita a pesquisa de preços? Painel de Preços, cotações com fornecedores, histórico de contratos ou marketplace?"
	MsgAskInstallment = "Faz sentido dividir essa contratação em lotes ou fases, ou prefere contratação única?"
	MsgAskSummary     = "Aqui está o resumo consolidado do estudo. Se estiver tudo certo, diga \"pode gerar\" para montar o documento, ou indique o que deseja ajustar."

	MsgDocumentReady  = "Documento montado. Use a pré-visualização para conferir as seções antes de finalizar."
	MsgFinalized      = "Estudo finalizado e encaminhado para geração do documento."
	MsgGeneratorSoft  = "(Gerador de texto indisponível no momento; apliquei o modelo padrão de conteúdo.)"
	MsgEmptyMessage   = "Mensagem vazia. Pode escrever o que deseja?"
	MsgApologyGeneric = "Desculpe, tive um problema ao processar sua mensagem. Pode tentar novamente?"
)

// Strict per-stage generation prompts. Every template demands JSON output
// and forbids onboarding phrases and document section titles in chat.
const (
	PromptSuggestRequirements = `Gere APENAS uma lista numerada de requisitos técnicos e operacionais, sem perguntas e sem textos de abertura.
Cada item deve terminar com (Obrigatório) ou (Desejável) e incluir critério de verificação/auditoria.
É EXPRESSAMENTE PROIBIDO incluir:
- "Descrição da Necessidade"
- "Justificativa da Contratação" (em qualquer forma)
- Frases como "Vamos começar", "Posso seguir", "Posso avançar"

Saída OBRIGATÓRIA (JSON estrito, somente estas chaves):
{"intro":"...","items":["1. ... (Obrigatório)","2. ... (Desejável)"],"rationale":"..."}`

	PromptSolutionStrategies = `Proponha APENAS 2-3 estratégias de contratação coerentes com a necessidade e os requisitos aprovados.
Para cada estratégia, retorne exclusivamente title, when_indicated, advantages e risks.
PROIBIDO nesta etapa:
- "Justificativa da Contratação", qualquer parágrafo narrativo
- Reabrir "Descrição da Necessidade" ou onboarding ("vamos começar", "posso seguir")

Saída JSON estrita (apenas esta chave):
{"strategies":[{"title":"...","when_indicated":"...","advantages":["..."],"risks":["..."]}]}`

	PromptLegalNorms = `Liste normas aplicáveis com breve justificativa de aplicabilidade.
PROIBIDO "Descrição da Necessidade"/"Justificativa da Contratação".
Saída JSON: {"norms":[{"ref":"Lei 14.133/2021, art. X","aplica":"..."}]}`

	PromptSummary = `Resumo executivo final do estudo, coerente com as etapas anteriores. Sem onboarding.
Saída JSON: {"executive_summary":"..."}`
)
