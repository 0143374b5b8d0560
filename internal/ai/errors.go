package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrMissingAPIKey — ключ провайдера не сконфигурирован. Фатально при старте, не на вызов.
	ErrMissingAPIKey = errors.New("ai: api key is not configured (set AI_API_KEY)")
	// ErrEmptyCompletion — транспорт успешен, но провайдер не вернул пригодного текста.
	ErrEmptyCompletion = errors.New("ai: provider returned empty completion")
	// ErrNoImage — транспорт успешен, но список изображений пуст.
	ErrNoImage = errors.New("ai: provider returned no images")
	// ErrNoAudio — транспорт успешен, но аудио‑данные пусты.
	ErrNoAudio = errors.New("ai: provider returned empty audio payload")
)

// ProviderError — неуспешный ответ провайдера, нормализованный до человекочитаемого
// сообщения. Сообщение берётся из структурированного тела ошибки, если оно есть.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// providerErrorBody покрывает оба формата тела ошибки:
// {"error": {"message": "..."}} и {"error": "..."}.
type providerErrorBody struct {
	Error json.RawMessage `json:"error"`
}

// decodeProviderError формирует ProviderError из неуспешного HTTP ответа.
// Тело читается с ограничением; если его не удаётся разобрать как ожидаемую
// структуру — используем сообщение, производное от статуса.
func decodeProviderError(resp *http.Response) *ProviderError {
	msg := fmt.Sprintf("provider returned status %d", resp.StatusCode)
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if len(body) == 0 {
		return &ProviderError{Status: resp.StatusCode, Message: msg}
	}
	var eb providerErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Error) > 0 {
		var s string
		if err := json.Unmarshal(eb.Error, &s); err == nil && strings.TrimSpace(s) != "" {
			return &ProviderError{Status: resp.StatusCode, Message: s}
		}
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(eb.Error, &obj); err == nil && strings.TrimSpace(obj.Message) != "" {
			return &ProviderError{Status: resp.StatusCode, Message: obj.Message}
		}
	}
	return &ProviderError{Status: resp.StatusCode, Message: msg}
}

// normalizeSDKError приводит ошибку openai‑go к ProviderError, чтобы обе
// транспортные реализации шлюза отдавали один и тот же тип.
func normalizeSDKError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = fmt.Sprintf("provider returned status %d", apiErr.StatusCode)
		}
		return &ProviderError{Status: apiErr.StatusCode, Message: msg}
	}
	return err
}
