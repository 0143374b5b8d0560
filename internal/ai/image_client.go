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

const (
	imageGeneratePath = "/image/generate"
	imageEditPath     = "/image/edit"
)

// imageFormats — допустимые форматы вывода.
var imageFormats = map[string]bool{"png": true, "jpeg": true, "webp": true}

// ImageClient генерирует и правит изображения через REST endpoint провайдера.
type ImageClient struct {
	http    *http.Client
	apiKey  string
	baseURL string
	cfg     config.AIConfig
	logger  *zap.SugaredLogger
}

// ImageOptions параметры одного вызова генерации/правки.
type ImageOptions struct {
	Model    string
	Width    int
	Height   int
	Steps    int     // число шагов диффузии
	CFGScale float64 // guidance scale
	Format   string  // png|jpeg|webp
	Variants int     // сколько вариантов запросить; возвращается всегда первый
	SafeMode bool
}

type imageRequest struct {
	Model    string  `json:"model"`
	Prompt   string  `json:"prompt"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Steps    int     `json:"steps,omitempty"`
	CFGScale float64 `json:"cfg_scale,omitempty"`
	Format   string  `json:"format,omitempty"`
	Variants int     `json:"variants,omitempty"`
	SafeMode bool    `json:"safe_mode"`
	// Референсное изображение (URL) — только для правки.
	Image string `json:"image,omitempty"`
}

type imageResponse struct {
	Images []string `json:"images"`
}

func newImageClient(cfg config.AIConfig, httpClient *http.Client, logger *zap.SugaredLogger) *ImageClient {
	return &ImageClient{
		http:    httpClient,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		logger:  logger,
	}
}

// Generate синтезирует изображение по текстовому промпту.
// Возвращает ровно одно изображение — первое из возможно нескольких.
func (c *ImageClient) Generate(ctx context.Context, prompt string, opts ImageOptions) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("image: empty prompt")
	}
	return c.post(ctx, imageGeneratePath, c.buildRequest(prompt, "", opts))
}

// Edit правит референсное изображение по промпту. Контракт тот же, что у
// Generate, но вместо синтеза с нуля передаётся ссылка на исходник.
func (c *ImageClient) Edit(ctx context.Context, prompt string, imageURL string, opts ImageOptions) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("image: empty prompt")
	}
	if strings.TrimSpace(imageURL) == "" {
		return nil, errors.New("image: empty reference image url")
	}
	return c.post(ctx, imageEditPath, c.buildRequest(prompt, imageURL, opts))
}

func (c *ImageClient) buildRequest(prompt, imageURL string, opts ImageOptions) imageRequest {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = c.cfg.ImageModel
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if !imageFormats[format] {
		format = "png"
	}
	variants := opts.Variants
	if variants <= 0 {
		variants = 1
	}
	return imageRequest{
		Model:    model,
		Prompt:   prompt,
		Width:    opts.Width,
		Height:   opts.Height,
		Steps:    opts.Steps,
		CFGScale: opts.CFGScale,
		Format:   format,
		Variants: variants,
		SafeMode: opts.SafeMode,
		Image:    imageURL,
	}
}

func (c *ImageClient) post(ctx context.Context, path string, reqBody imageRequest) ([]byte, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("image: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
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
	c.logger.Infow("Запрос изображения выполнен", "path", path, "status", resp.StatusCode, "took", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeProviderError(resp)
	}

	var ir imageResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)) // base64 крупных изображений
	if err := dec.Decode(&ir); err != nil {
		return nil, fmt.Errorf("image: decode response: %w", err)
	}
	if len(ir.Images) == 0 {
		return nil, ErrNoImage
	}

	raw := ir.Images[0]
	// Некоторые провайдеры возвращают data URL вместо чистого base64.
	if i := strings.Index(raw, ";base64,"); i >= 0 {
		raw = raw[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("image: base64 decode: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	return data, nil
}
