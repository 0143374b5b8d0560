package history

import (
	"fmt"
	"testing"

	"CharacterChat/internal/ai"
	"CharacterChat/internal/service/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowSelectsOnlyTextMessages(t *testing.T) {
	msgs := []session.Message{
		session.NewTextMessage(session.RoleUser, "привет"),
		session.NewImageMessage("aW1n", "кот"),
		session.NewAudioMessage("YXVkaW8=", "audio/mpeg", "ответ"),
		session.NewTextMessage(session.RoleAssistant, "здравствуй"),
	}

	got := Window(msgs, 20)

	require.Len(t, got, 2)
	assert.Equal(t, ai.Turn{Role: ai.RoleUser, Content: "привет"}, got[0])
	assert.Equal(t, ai.Turn{Role: ai.RoleAssistant, Content: "здравствуй"}, got[1])
}

func TestWindowKeepsMostRecentInChronologicalOrder(t *testing.T) {
	var msgs []session.Message
	for i := 0; i < 30; i++ {
		msgs = append(msgs, session.NewTextMessage(session.RoleUser, fmt.Sprintf("m%d", i)))
	}

	got := Window(msgs, 20)

	require.Len(t, got, 20)
	assert.Equal(t, "m10", got[0].Content)
	assert.Equal(t, "m29", got[19].Content)
}

func TestWindowLimit(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{name: "fewer than limit", total: 3, limit: 20, want: 3},
		{name: "exactly limit", total: 20, limit: 20, want: 20},
		{name: "over limit", total: 25, limit: 20, want: 20},
		{name: "non-positive limit falls back to default", total: 25, limit: 0, want: 20},
		{name: "empty", total: 0, limit: 20, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msgs []session.Message
			for i := 0; i < tt.total; i++ {
				msgs = append(msgs, session.NewTextMessage(session.RoleUser, "x"))
			}
			assert.Len(t, Window(msgs, tt.limit), tt.want)
		})
	}
}

func TestWindowIsPure(t *testing.T) {
	msgs := []session.Message{
		session.NewTextMessage(session.RoleUser, "a"),
		session.NewTextMessage(session.RoleAssistant, "b"),
	}

	first := Window(msgs, 20)
	second := Window(msgs, 20)

	assert.Equal(t, first, second)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].Content)
}
