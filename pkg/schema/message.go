package schema

import (
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Message is a single stored turn half, either from the user or the assistant
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the ordered message history of a session
type Conversation []Message

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMessage returns a message with the timestamp set to now
func NewMessage(role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Append adds messages to the end of the conversation
func (c *Conversation) Append(messages ...Message) {
	*c = append(*c, messages...)
}

// Last returns the most recent n messages. A non-positive n returns
// an empty conversation.
func (c Conversation) Last(n int) Conversation {
	if n <= 0 {
		return Conversation{}
	}
	if n >= len(c) {
		return c
	}
	return c[len(c)-n:]
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m Message) String() string {
	return types.Stringify(m)
}
