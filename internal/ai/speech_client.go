package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"CharacterChat/internal/config"

	"go.uber.org/zap"
)

const speechPath = "/audio/speech"

// SpeechClient синтезирует речь через REST endpoint провайдера.
type SpeechClient struct {
	http    *http.Client
	apiKey  string
	baseURL string
	cfg     config.AIConfig
	logger  *zap.SugaredLogger
}

// SpeechOptions параметры одного вызова синтеза.
type SpeechOptions struct {
	Model string
	Voice string
	Codec string  // mp3|opus|aac
	Speed float64 // множитель скорости речи
}

// Audio — результат синтеза: байты и производный от кодека MIME‑тип.
type Audio struct {
	Data     []byte
	MimeType string
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
}

// В некоторых конфигурациях ответ приходит как бинарный аудио‑стрим,
// в других — JSON с base64. Поддерживаем оба варианта.
type speechJSONResponse struct {
	AudioContent string `json:"audioContent"`
	Audio        string `json:"audio"`
}

func newSpeechClient(cfg config.AIConfig, httpClient *http.Client, logger *zap.SugaredLogger) *SpeechClient {
	return &SpeechClient{
		http:    httpClient,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		logger:  logger,
	}
}

// MimeTypeForCodec отображает запрошенный кодек в MIME‑тип детерминированно.
// Неизвестный кодек трактуем как mp3.
func MimeTypeForCodec(codec string) string {
	switch strings.ToLower(strings.TrimSpace(codec)) {
	case "mp3":
		return "audio/mpeg"
	case "opus":
		return "audio/ogg"
	case "aac":
		return "audio/aac"
	default:
		return "audio/mpeg"
	}
}

// Synthesize озвучивает текст и возвращает аудио с MIME‑типом.
func (c *SpeechClient) Synthesize(ctx context.Context, text string, opts SpeechOptions) (*Audio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("speech: empty input text")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = c.cfg.SpeechModel
	}
	voice := strings.TrimSpace(opts.Voice)
	if voice == "" {
		voice = c.cfg.SpeechVoice
	}
	codec := strings.ToLower(strings.TrimSpace(opts.Codec))
	if codec == "" {
		codec = c.cfg.SpeechCodec
	}

	body, err := json.Marshal(speechRequest{
		Model:          model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: codec,
		Speed:          opts.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+speechPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	c.logger.Infow("Запрос синтеза речи выполнен", "status", resp.StatusCode, "took", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeProviderError(resp)
	}

	data, err := c.readAudio(resp)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoAudio
	}
	return &Audio{Data: data, MimeType: MimeTypeForCodec(codec)}, nil
}

// readAudio разбирает успешный ответ: JSON content type — структура с base64,
// всё остальное — непрозрачный бинарный поток.
func (c *SpeechClient) readAudio(resp *http.Response) ([]byte, error) {
	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		var jr speechJSONResponse
		dec := json.NewDecoder(io.LimitReader(resp.Body, 16<<20))
		if err := dec.Decode(&jr); err != nil {
			return nil, fmt.Errorf("speech: decode json response: %w", err)
		}
		encoded := jr.AudioContent
		if encoded == "" {
			encoded = jr.Audio
		}
		if strings.TrimSpace(encoded) == "" {
			return nil, ErrNoAudio
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("speech: base64 decode: %w", err)
		}
		return data, nil
	}
	return io.ReadAll(io.LimitReader(resp.Body, 32<<20))
}
