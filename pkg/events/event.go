package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "etp.finalized").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by the domain constructors.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewEtpFinalized signals that a session's document was finalized and its
// section map is ready for the external renderer.
func NewEtpFinalized(sessionId string, sections map[string]string) Event {
	return BaseEvent{
		Type: "etp.finalized",
		Data: map[string]interface{}{
			"session_id": sessionId,
			"sections":   sections,
		},
		OccurredAt: time.Now(),
	}
}

// NewKbDocumentAdded signals a new knowledge-base document to embed.
func NewKbDocumentAdded(documentId, sectionType, content string) Event {
	return BaseEvent{
		Type: "kb.document.added",
		Data: map[string]interface{}{
			"document_id":  documentId,
			"section_type": sectionType,
			"content":      content,
		},
		OccurredAt: time.Now(),
	}
}
