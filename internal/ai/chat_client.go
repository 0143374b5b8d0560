package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"CharacterChat/internal/config"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

// ChatClient выполняет chat completion через OpenAI‑совместимый endpoint провайдера.
type ChatClient struct {
	client *openai.Client
	cfg    config.AIConfig
	logger *zap.SugaredLogger
}

// ChatOptions параметры одного вызова. Params — свободный набор
// провайдер‑специфичных флагов (например, выбор персоны или веб‑поиск),
// пересылаемый в тело запроса как есть.
type ChatOptions struct {
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Params      map[string]any
}

func newChatClient(cfg config.AIConfig, httpClient *http.Client, logger *zap.SugaredLogger) *ChatClient {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0), // повторы — ответственность вызывающего
	)
	return &ChatClient{client: &client, cfg: cfg, logger: logger}
}

// Complete отправляет упорядоченный контекст реплик и возвращает текст ответа.
func (c *ChatClient) Complete(ctx context.Context, turns []Turn, opts ChatOptions) (string, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = c.cfg.ChatModel
	}

	items := make(responses.ResponseInputParam, 0, len(turns))
	for _, t := range turns {
		items = append(items, responses.ResponseInputItemParamOfMessage(t.Content, easyRole(t.Role)))
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(model),
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: items},
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = openai.Float(opts.TopP)
	}
	if opts.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(opts.MaxTokens))
	}

	// Свободные провайдер‑параметры вписываются в JSON тела запроса верхним уровнем.
	reqOpts := make([]option.RequestOption, 0, len(opts.Params))
	for k, v := range opts.Params {
		reqOpts = append(reqOpts, option.WithJSONSet(k, v))
	}

	start := time.Now()
	resp, err := c.client.Responses.New(ctx, params, reqOpts...)
	dur := time.Since(start)
	if err != nil {
		c.logger.Errorw("Ошибка ответа провайдера", "model", model, "duration", dur.String(), "error", err)
		return "", normalizeSDKError(err)
	}
	c.logger.Infow("Ответ провайдера получен", "model", model, "duration", dur.String())

	out := resp.OutputText()
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

func easyRole(r Role) responses.EasyInputMessageRole {
	switch r {
	case RoleSystem:
		return responses.EasyInputMessageRoleSystem
	case RoleAssistant:
		return responses.EasyInputMessageRoleAssistant
	default:
		return responses.EasyInputMessageRoleUser
	}
}
