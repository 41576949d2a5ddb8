package agent

// EventType identifies one kind of stream event
type EventType string

const (
	EventChatStart EventType = "chat_start"
	EventChatChunk EventType = "chat_chunk"
	EventStatus    EventType = "status"
	EventPlan      EventType = "plan"
	EventResources EventType = "resources"
	EventChatEnd   EventType = "chat_end"
	EventError     EventType = "error"
)

// Event is one entry of the conversation stream sent to the client.
// Exactly the fields for the event's type are populated.
type Event struct {
	Type     EventType `json:"type"`
	Role     string    `json:"role,omitempty"`      // chat_start
	Text     string    `json:"text,omitempty"`      // chat_chunk, status, error
	FullText string    `json:"full_text,omitempty"` // chat_end
	Content  any       `json:"content,omitempty"`   // plan, resources
}

// EmitFunc receives events in production order. Implementations must not
// reorder or buffer; the orchestrator relies on synchronous delivery.
type EmitFunc func(Event)

func chatStart() Event {
	return Event{Type: EventChatStart, Role: "agent"}
}

func chatChunk(text string) Event {
	return Event{Type: EventChatChunk, Text: text}
}

func statusEvent(text string) Event {
	return Event{Type: EventStatus, Text: text}
}

func structuredEvent(kind EventType, content any) Event {
	return Event{Type: kind, Content: content}
}

func chatEnd(fullText string) Event {
	return Event{Type: EventChatEnd, FullText: fullText}
}

func errorEvent(text string) Event {
	return Event{Type: EventError, Text: text}
}
