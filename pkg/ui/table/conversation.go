package table

import (
	// Packages
	schema "github.com/dilettacal/digital-twin/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Messages renders a conversation, one message per row
type Messages schema.Conversation

// Sessions renders a list of session identifiers
type Sessions []string

var _ TableData = Messages(nil)
var _ TableData = Sessions(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const maxContent = 400

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (Messages) Header() []string {
	return []string{"#", "Time", "Role", "Message"}
}

func (m Messages) Len() int {
	return len(m)
}

func (m Messages) Row(i int) []any {
	message := m[i]
	role := any(message.Role)
	if message.Role == schema.RoleUser {
		role = Bold{message.Role}
	}
	return []any{i + 1, message.Timestamp, role, Truncate(message.Content, maxContent)}
}

func (Sessions) Header() []string {
	return []string{"Session"}
}

func (s Sessions) Len() int {
	return len(s)
}

func (s Sessions) Row(i int) []any {
	return []any{s[i]}
}
