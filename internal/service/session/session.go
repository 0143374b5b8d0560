package session

import (
	"time"

	"github.com/google/uuid"
)

// Role автора сообщения.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind вид сообщения в ленте.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// Message — одно сообщение ленты. Тегированный вариант: заполненные поля
// зависят от Kind. После добавления в диалог сообщение неизменяемо.
type Message struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Kind Kind   `json:"kind"`
	// KindText
	Content string `json:"content,omitempty"`
	// KindImage: бинарные данные как base64, описание — опционально
	ImageData   string `json:"imageData,omitempty"`
	Description string `json:"description,omitempty"`
	// KindAudio
	AudioData  string `json:"audioData,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// Thread — независимый именованный журнал диалога. Порядок сообщений —
// хронологический, добавление только в конец.
type Thread struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages"`
}

// State — сериализуемый снимок сессии: активный диалог и все диалоги.
type State struct {
	ActiveThreadID string   `json:"activeThreadId"`
	Threads        []Thread `json:"threads"`
}

// NewTextMessage создаёт текстовое сообщение с новым идентификатором.
func NewTextMessage(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Kind: KindText, Content: content}
}

// NewImageMessage создаёт сообщение‑изображение ассистента.
func NewImageMessage(imageBase64 string, description string) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Kind: KindImage, ImageData: imageBase64, Description: description}
}

// NewAudioMessage создаёт аудио‑сообщение ассистента с транскриптом реплики.
func NewAudioMessage(audioBase64 string, mimeType string, transcript string) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Kind: KindAudio, AudioData: audioBase64, MimeType: mimeType, Transcript: transcript}
}
