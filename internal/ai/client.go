package ai

import (
	"net/http"
	"strings"
	"time"

	"CharacterChat/internal/config"

	"go.uber.org/zap"
)

// Role роль реплики в контексте диалога.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn — одна реплика контекста, отправляемого в чат‑модель.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Gateway объединяет клиентов четырёх возможностей провайдера за одним ключом.
// Каждый вызов — ровно один сетевой запрос; повторы, если нужны, делает вызывающий.
type Gateway struct {
	Chat   *ChatClient
	Vision *VisionClient
	Image  *ImageClient
	Speech *SpeechClient
}

// NewGateway создаёт шлюз провайдера. Отсутствие ключа — ошибка создания,
// а не каждого вызова.
func NewGateway(cfg config.AIConfig, logger *zap.SugaredLogger) (*Gateway, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	httpClient := &http.Client{Timeout: timeout}

	chat := newChatClient(cfg, httpClient, logger)
	return &Gateway{
		Chat:   chat,
		Vision: newVisionClient(chat, cfg, logger),
		Image:  newImageClient(cfg, httpClient, logger),
		Speech: newSpeechClient(cfg, httpClient, logger),
	}, nil
}
