package schema_test

import (
	"testing"

	// Packages
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

func Test_Conversation_001(t *testing.T) {
	assert := assert.New(t)

	var conversation schema.Conversation
	conversation.Append(schema.NewMessage(schema.RoleUser, "Hello"))
	conversation.Append(schema.NewMessage(schema.RoleAssistant, "Hi there!"))

	assert.Len(conversation, 2)
	assert.Equal(schema.RoleUser, conversation[0].Role)
	assert.Equal(schema.RoleAssistant, conversation[1].Role)
	assert.False(conversation[0].Timestamp.IsZero())
}

func Test_Conversation_002(t *testing.T) {
	assert := assert.New(t)

	var conversation schema.Conversation
	for _, content := range []string{"a", "b", "c", "d"} {
		conversation.Append(schema.NewMessage(schema.RoleUser, content))
	}

	assert.Len(conversation.Last(0), 0)
	assert.Len(conversation.Last(-1), 0)
	assert.Len(conversation.Last(10), 4)

	last := conversation.Last(2)
	assert.Len(last, 2)
	assert.Equal("c", last[0].Content)
	assert.Equal("d", last[1].Content)
}
