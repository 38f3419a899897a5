package feed

import "fmt"

// Event is a change notification for observers. The feed is a cache
// invalidation signal only: correctness never depends on delivery, and
// publishing happens strictly after the mutation committed.
type Event struct {
	Topic   string      `json:"topic"`
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	TopicTasks = "tasks"

	KindTaskCreated    = "task.created"
	KindTaskUpdated    = "task.updated"
	KindMatchCreated   = "match.created"
	KindMatchUpdated   = "match.updated"
	KindMessageCreated = "message.created"
)

// TopicMatch scopes match and message events to their match.
func TopicMatch(matchID string) string {
	return fmt.Sprintf("match:%s", matchID)
}

// Publisher fan-outs committed mutations. Implementations must not block the
// request path.
type Publisher interface {
	Publish(event Event)
}

// NopPublisher drops everything; used in tests and when the ws layer is off.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
