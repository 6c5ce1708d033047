package chat

// Roles of conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    string
	Content string
}

// History is an append-only, chronologically ordered conversation.
// It is owned by a single session and never shared across goroutines.
type History struct {
	turns []Turn
}

// Append adds a turn at the end.
func (h *History) Append(role, content string) {
	h.turns = append(h.turns, Turn{Role: role, Content: content})
}

// Turns returns the turns in order. The slice must not be mutated.
func (h *History) Turns() []Turn {
	return h.turns
}

// Len returns the number of turns.
func (h *History) Len() int { return len(h.turns) }
