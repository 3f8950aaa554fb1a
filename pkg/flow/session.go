// FILE: pkg/flow/session.go
// PURPOSE: The conversation session value every core component operates on

package flow

import (
	"etp-authoring-be/pkg/flow/stage"
)

// Requirement is one numbered item of the ordered requirement list.
// Identity is positional: ids are always R1..Rk with no gaps and are
// recomputed after every edit. No justification field exists here — the
// document never carries per-requirement justifications.
type Requirement struct {
	Id   string `json:"id"` // "R<n>"
	Text string `json:"text"`
}

// PendingDecision is the single-slot arbitration state. While present,
// the next inbound message is offered to the decision arbiter before any
// other interpretation runs.
type PendingDecision struct {
	Prompt   string      `json:"prompt"`
	Proposal string      `json:"proposal"`
	Stage    stage.Stage `json:"stage"`
}

// PCAAnswer records the budget-plan (PCA) status for this procurement.
type PCAAnswer struct {
	Status string `json:"status"` // "sim" | "nao" | "nao_informado" | "pendente"
	Detail string `json:"detail,omitempty"`
}

// PriceResearchAnswer records how prices were researched.
type PriceResearchAnswer struct {
	Method        string   `json:"method,omitempty"`
	SupplierCount int      `json:"supplier_count,omitempty"`
	EvidenceLinks []string `json:"evidence_links,omitempty"`
}

// LegalBasisAnswer records the legal basis free text plus side notes.
type LegalBasisAnswer struct {
	Text  string   `json:"text,omitempty"`
	Notes []string `json:"notes,omitempty"`
}

// Strategy is one contracting strategy presented to the user.
type Strategy struct {
	Title         string   `json:"title"`
	WhenIndicated string   `json:"when_indicated,omitempty"`
	Advantages    []string `json:"advantages,omitempty"`
	Risks         []string `json:"risks,omitempty"`
}

// InstallmentAnswer records the installment (parcelamento) decision.
type InstallmentAnswer struct {
	Decision string `json:"decision"` // "sim" | "nao" | "nao_informado" | "pendente"
	Text     string `json:"text,omitempty"`
}

// QtyValueItem is one line of the quantity/value estimate.
type QtyValueItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitValue   float64 `json:"unit_value"`
}

// Answers is the per-stage answer bag accumulated over the conversation.
type Answers struct {
	PCA              *PCAAnswer           `json:"pca,omitempty"`
	PriceResearch    *PriceResearchAnswer `json:"price_research,omitempty"`
	LegalBasis       *LegalBasisAnswer    `json:"legal_basis,omitempty"`
	Strategies       []Strategy           `json:"strategies,omitempty"`
	StrategyChoice   string               `json:"strategy_choice,omitempty"`
	Installment      *InstallmentAnswer   `json:"installment,omitempty"`
	QtyValue         []QtyValueItem       `json:"qty_value,omitempty"`
	ValueMethodology string               `json:"value_methodology,omitempty"`
	ExecutiveSummary string               `json:"executive_summary,omitempty"`
}

// Session is the unit of conversation. Components receive it by value or
// pointer within one request; serializing concurrent access to the same id
// is the persistence layer's concern.
type Session struct {
	Id                 string           `json:"id"`
	Stage              stage.Stage      `json:"stage"`
	Topic              string           `json:"topic,omitempty"` // current answer topic within confirm_requirements
	Necessity          string           `json:"necessity"`
	Requirements       []Requirement    `json:"requirements"`
	RequirementsLocked bool             `json:"requirements_locked"`
	Answers            Answers          `json:"answers"`
	PendingDecision    *PendingDecision `json:"pending_decision,omitempty"`
}

// NewSession starts a session at the first stage.
func NewSession(id string) *Session {
	return &Session{
		Id:    id,
		Stage: stage.CollectNeed,
	}
}

// HasPendingDecision reports whether the arbitration slot is occupied.
func (s *Session) HasPendingDecision() bool {
	return s.PendingDecision != nil
}

// RequirementTexts returns the requirement texts in list order.
func (s *Session) RequirementTexts() []string {
	out := make([]string, len(s.Requirements))
	for i, r := range s.Requirements {
		out[i] = r.Text
	}
	return out
}
