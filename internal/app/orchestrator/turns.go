package orchestrator

import (
	"context"
	"errors"
	"strings"

	"CharacterChat/internal/ai"
)

// Операции транспортной границы: те же последовательности вызовов шлюза,
// что и в Submit, но без состояния сессии — ленту ведёт клиент. Тонкие
// HTTP‑обработчики только валидируют вход и зовут эти методы.

// ChatResult — результат текстового хода транспортной границы.
type ChatResult struct {
	Reply string
	Audio *ai.Audio // озвучка ответа; nil, если голос не запрашивался
}

// ImageResult — результат хода изображения транспортной границы.
type ImageResult struct {
	Image       []byte
	Description string // пусто, если описание не удалось
}

// ChatTurn выполняет chat completion по переданному контексту, при
// voiceRequested — последовательно озвучивает ответ. Ошибка озвучки
// фатальна для всего хода.
func (o *Orchestrator) ChatTurn(ctx context.Context, turns []ai.Turn, params map[string]any, voiceRequested bool) (*ChatResult, error) {
	if len(turns) == 0 {
		return nil, errors.New("chat turn: empty messages")
	}
	reply, err := o.gw.Chat.Complete(ctx, turns, o.chatOptions(params))
	if err != nil {
		return nil, err
	}
	res := &ChatResult{Reply: reply}
	if !voiceRequested {
		return res, nil
	}
	audio, err := o.gw.Speech.Synthesize(ctx, reply, o.speechOptions())
	if err != nil {
		return nil, err
	}
	res.Audio = audio
	return res, nil
}

// ImageTurn генерирует или правит изображение, затем best‑effort описывает
// результат: ошибка описания логируется и глотается.
func (o *Orchestrator) ImageTurn(ctx context.Context, prompt string, edit bool, imageURL string, params map[string]any) (*ImageResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("image turn: empty prompt")
	}
	opts := o.imageOptionsFromParams(params)
	var (
		img []byte
		err error
	)
	if edit {
		img, err = o.gw.Image.Edit(ctx, prompt, imageURL, opts)
	} else {
		img, err = o.gw.Image.Generate(ctx, prompt, opts)
	}
	if err != nil {
		return nil, err
	}
	res := &ImageResult{Image: img}
	desc, derr := o.gw.Vision.Describe(ctx, img)
	if derr != nil {
		o.logger.Warnw("Не удалось описать изображение, продолжаем без описания", "error", derr)
		return res, nil
	}
	res.Description = desc
	return res, nil
}

// imageOptionsFromParams накладывает распознанные ключи свободного набора
// параметров на типизированные опции генерации; незнакомые ключи игнорируются.
// Числа приходят из JSON как float64.
func (o *Orchestrator) imageOptionsFromParams(params map[string]any) ai.ImageOptions {
	opts := o.imageOptions()
	for k, v := range params {
		switch k {
		case "model":
			if s, ok := v.(string); ok {
				opts.Model = s
			}
		case "width":
			if f, ok := v.(float64); ok {
				opts.Width = int(f)
			}
		case "height":
			if f, ok := v.(float64); ok {
				opts.Height = int(f)
			}
		case "steps":
			if f, ok := v.(float64); ok {
				opts.Steps = int(f)
			}
		case "cfg_scale":
			if f, ok := v.(float64); ok {
				opts.CFGScale = f
			}
		case "format":
			if s, ok := v.(string); ok {
				opts.Format = s
			}
		case "variants":
			if f, ok := v.(float64); ok {
				opts.Variants = int(f)
			}
		case "safe_mode":
			if b, ok := v.(bool); ok {
				opts.SafeMode = b
			}
		}
	}
	return opts
}
