package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"CharacterChat/internal/config"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

// Фиксированная инструкция описания: результат попадает в ленту как реплика
// ассистента, поэтому просим короткий связный текст без перечислений.
const describeInstruction = "Describe the image in one or two short sentences, as if presenting it to the person who asked for it. No lists, no preamble."

// VisionClient описывает изображение. Специализация chat completion:
// фиксированная системная инструкция + vision‑модель.
type VisionClient struct {
	chat   *ChatClient
	cfg    config.AIConfig
	logger *zap.SugaredLogger
}

func newVisionClient(chat *ChatClient, cfg config.AIConfig, logger *zap.SugaredLogger) *VisionClient {
	return &VisionClient{chat: chat, cfg: cfg, logger: logger}
}

// Describe возвращает текстовое описание переданных байтов изображения.
func (v *VisionClient) Describe(ctx context.Context, imageBytes []byte) (string, error) {
	if len(imageBytes) == 0 {
		return "", errors.New("vision: empty image")
	}
	dataURL := makeImageDataURL(imageBytes)

	content := responses.ResponseInputMessageContentListParam{
		responses.ResponseInputContentParamOfInputText("What is in this image?"),
	}
	imagePart := responses.ResponseInputContentParamOfInputImage(responses.ResponseInputImageDetailAuto)
	imagePart.OfInputImage.ImageURL = openai.String(dataURL)
	content = append(content, imagePart)

	items := responses.ResponseInputParam{
		responses.ResponseInputItemParamOfMessage(describeInstruction, responses.EasyInputMessageRoleSystem),
		responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRoleUser),
	}
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(v.cfg.VisionModel),
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: items},
	}

	start := time.Now()
	resp, err := v.chat.client.Responses.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		v.logger.Errorw("Ошибка описания изображения", "duration", dur.String(), "error", err)
		return "", normalizeSDKError(err)
	}
	v.logger.Infow("Описание изображения получено", "duration", dur.String())

	out := resp.OutputText()
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

func makeImageDataURL(data []byte) string {
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}
