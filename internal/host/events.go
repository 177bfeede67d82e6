package host

import "sync"

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewAttribute(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

func NewEvent(typ string, attrs ...Attribute) Event {
	return Event{Type: typ, Attributes: attrs}
}

// Attr returns the value of the first attribute named key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// EventManager collects the events emitted by one transaction.
type EventManager struct {
	mu     sync.Mutex
	events []Event
}

func NewEventManager() *EventManager {
	return &EventManager{}
}

func (m *EventManager) Emit(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *EventManager) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
