package history

import (
	"CharacterChat/internal/ai"
	"CharacterChat/internal/service/session"
)

// DefaultLimit — сколько последних текстовых сообщений уходит в контекст чата.
const DefaultLimit = 20

// Window выводит ограниченный контекст из полной ленты диалога: только
// текстовые сообщения (изображения и аудио в контекст провайдера не попадают),
// последние limit штук, в хронологическом порядке. Чистая функция.
func Window(messages []session.Message, limit int) []ai.Turn {
	if limit <= 0 {
		limit = DefaultLimit
	}
	texts := make([]session.Message, 0, len(messages))
	for _, m := range messages {
		if m.Kind == session.KindText {
			texts = append(texts, m)
		}
	}
	if len(texts) > limit {
		texts = texts[len(texts)-limit:]
	}
	out := make([]ai.Turn, 0, len(texts))
	for _, m := range texts {
		out = append(out, ai.Turn{Role: ai.Role(m.Role), Content: m.Content})
	}
	return out
}
