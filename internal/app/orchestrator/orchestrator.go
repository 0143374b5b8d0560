package orchestrator

import (
	"context"
	"encoding/base64"
	"strings"
	"sync/atomic"

	"CharacterChat/internal/ai"
	"CharacterChat/internal/config"
	"CharacterChat/internal/service/character"
	"CharacterChat/internal/service/history"
	"CharacterChat/internal/service/mode"
	"CharacterChat/internal/service/session"

	"go.uber.org/zap"
)

// Indicator — транзиентный признак выполняемого хода для интерфейса.
type Indicator string

const (
	IndicatorNone  Indicator = ""
	IndicatorText  Indicator = "text"
	IndicatorImage Indicator = "image"
)

// Интерфейсы шлюза объявлены на стороне потребителя: оркестратору не нужен
// весь клиент провайдера, только четыре возможности.
type ChatGateway interface {
	Complete(ctx context.Context, turns []ai.Turn, opts ai.ChatOptions) (string, error)
}

type VisionGateway interface {
	Describe(ctx context.Context, imageBytes []byte) (string, error)
}

type ImageGateway interface {
	Generate(ctx context.Context, prompt string, opts ai.ImageOptions) ([]byte, error)
	Edit(ctx context.Context, prompt string, imageURL string, opts ai.ImageOptions) ([]byte, error)
}

type SpeechGateway interface {
	Synthesize(ctx context.Context, text string, opts ai.SpeechOptions) (*ai.Audio, error)
}

// Persister сохраняет снимок сессии после завершённого хода.
type Persister interface {
	Save(st session.State)
}

// Gateways — четыре возможности провайдера, нужные оркестратору.
type Gateways struct {
	Chat   ChatGateway
	Vision VisionGateway
	Image  ImageGateway
	Speech SpeechGateway
}

// GatewaysFrom собирает набор из готового шлюза провайдера.
func GatewaysFrom(g *ai.Gateway) Gateways {
	return Gateways{Chat: g.Chat, Vision: g.Vision, Image: g.Image, Speech: g.Speech}
}

// Orchestrator превращает один ход пользователя в последовательность вызовов
// шлюза и дописывает результаты в активный диалог. Одновременно выполняется
// не более одного хода: повторный сабмит во время выполнения молча игнорируется.
type Orchestrator struct {
	cfg     *config.Config
	gw      Gateways
	store   *session.Store
	modes   *mode.Controller
	char    character.Character
	persist Persister // может быть nil — тогда снимки не пишутся
	logger  *zap.SugaredLogger

	inFlight   atomic.Bool
	processing atomic.Value // Indicator
}

func New(cfg *config.Config, gw Gateways, store *session.Store, modes *mode.Controller, char character.Character, persist Persister, logger *zap.SugaredLogger) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		gw:      gw,
		store:   store,
		modes:   modes,
		char:    char,
		persist: persist,
		logger:  logger,
	}
	o.processing.Store(IndicatorNone)
	// Пока ход выполняется, переключения режима игнорируются так же молча,
	// как и повторные сабмиты.
	modes.Guard(o.inFlight.Load)
	return o
}

// Processing возвращает текущий индикатор выполняемого хода.
func (o *Orchestrator) Processing() Indicator {
	return o.processing.Load().(Indicator)
}

// Outcome — результат одного хода: добавленные сообщения и состояние ошибки.
type Outcome struct {
	ThreadID string
	Messages []session.Message // дописанные в диалог за этот ход
	Err      string            // сообщение ошибки хода; пусто при успехе
}

// Failed сообщает, завершился ли ход ошибкой.
func (out *Outcome) Failed() bool { return out.Err != "" }

// Submit выполняет один ход пользователя в текущем режиме. Возвращает nil,
// если сабмит отвергнут (пустой ввод или ход уже выполняется). Состояние
// режима сбрасывается в {Text, false} при любом исходе, индикатор — тоже.
func (o *Orchestrator) Submit(ctx context.Context, userText string) *Outcome {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		o.logger.Infow("Ход уже выполняется, сабмит проигнорирован")
		return nil
	}
	defer o.inFlight.Store(false)

	activeMode, edit := o.modes.State()
	// Флаг правки действителен только в режиме изображения и только если у
	// персонажа есть референсный исходник; иначе принудительно false.
	if activeMode != mode.Image || !o.char.Editable() {
		edit = false
	}
	defer func() {
		o.modes.Reset()
		o.processing.Store(IndicatorNone)
		o.saveSnapshot()
	}()

	out := &Outcome{ThreadID: o.store.ActiveThreadID()}

	switch activeMode {
	case mode.Image:
		o.processing.Store(IndicatorImage)
		o.append(out, session.NewTextMessage(session.RoleUser, userText))
		o.imageFlow(ctx, out, userText, edit)
	default:
		o.processing.Store(IndicatorText)
		// Окно истории считается по ленте до нового хода: свежая реплика
		// идёт в контекст поверх окна, не вытесняя из него старые.
		prior := o.store.ActiveThread().Messages
		o.append(out, session.NewTextMessage(session.RoleUser, userText))
		o.textFlow(ctx, out, prior, userText, activeMode == mode.Voice)
	}
	return out
}

// textFlow: контекст из окна истории плюс новая реплика пользователя,
// затем chat completion; при голосовом режиме — озвучка ответа. Ошибка
// озвучки фатальна для хода, хотя ответ уже в ленте.
func (o *Orchestrator) textFlow(ctx context.Context, out *Outcome, prior []session.Message, userText string, voice bool) {
	window := history.Window(prior, o.cfg.HistoryLimit)

	turns := make([]ai.Turn, 0, len(window)+2)
	params := map[string]any{}
	if o.char.HasPersona() {
		params["character_slug"] = o.char.Slug
	} else {
		// Системная инструкция по умолчанию только для персонажа без персоны.
		turns = append(turns, ai.Turn{Role: ai.RoleSystem, Content: o.cfg.SystemPrompt})
	}
	turns = append(turns, window...)
	turns = append(turns, ai.Turn{Role: ai.RoleUser, Content: userText})

	reply, err := o.gw.Chat.Complete(ctx, turns, o.chatOptions(params))
	if err != nil {
		o.fail(out, err)
		return
	}
	o.append(out, session.NewTextMessage(session.RoleAssistant, reply))

	if !voice {
		return
	}
	audio, err := o.gw.Speech.Synthesize(ctx, reply, o.speechOptions())
	if err != nil {
		o.fail(out, err)
		return
	}
	encoded := base64.StdEncoding.EncodeToString(audio.Data)
	o.append(out, session.NewAudioMessage(encoded, audio.MimeType, reply))
}

// imageFlow: генерация или правка по промпту, затем описание результата.
// Описание строго best‑effort: его ошибка глотается и ход считается успешным.
func (o *Orchestrator) imageFlow(ctx context.Context, out *Outcome, prompt string, edit bool) {
	opts := o.imageOptions()
	var (
		img []byte
		err error
	)
	if edit {
		img, err = o.gw.Image.Edit(ctx, prompt, o.char.ReferenceImageURL, opts)
	} else {
		img, err = o.gw.Image.Generate(ctx, prompt, opts)
	}
	if err != nil {
		o.fail(out, err)
		return
	}
	encoded := base64.StdEncoding.EncodeToString(img)

	desc, derr := o.gw.Vision.Describe(ctx, img)
	if derr != nil {
		o.logger.Warnw("Не удалось описать изображение, продолжаем без описания", "error", derr)
		o.append(out, session.NewImageMessage(encoded, ""))
		return
	}
	o.append(out,
		session.NewImageMessage(encoded, desc),
		session.NewTextMessage(session.RoleAssistant, "Here is "+desc),
	)
}

// fail завершает ход ошибкой: синтетическое сообщение ассистента в ленту
// плюс текст ошибки в исходе.
func (o *Orchestrator) fail(out *Outcome, err error) {
	msg := err.Error()
	o.append(out, session.NewTextMessage(session.RoleAssistant, "Error: "+msg))
	out.Err = msg
}

func (o *Orchestrator) append(out *Outcome, msgs ...session.Message) {
	if err := o.store.AppendMessages(out.ThreadID, msgs...); err != nil {
		// Диалог мог быть удалён между ходами; терять сообщения молча нельзя.
		o.logger.Errorw("Не удалось дописать сообщения в диалог", "thread", out.ThreadID, "error", err)
		return
	}
	out.Messages = append(out.Messages, msgs...)
}

func (o *Orchestrator) saveSnapshot() {
	if o.persist == nil {
		return
	}
	o.persist.Save(o.store.Snapshot())
}

func (o *Orchestrator) chatOptions(params map[string]any) ai.ChatOptions {
	return ai.ChatOptions{
		Model:       o.cfg.AI.ChatModel,
		Temperature: o.cfg.AI.Temperature,
		TopP:        o.cfg.AI.TopP,
		MaxTokens:   o.cfg.AI.MaxTokens,
		Params:      params,
	}
}

func (o *Orchestrator) imageOptions() ai.ImageOptions {
	return ai.ImageOptions{
		Model:    o.cfg.AI.ImageModel,
		Width:    o.cfg.AI.ImageWidth,
		Height:   o.cfg.AI.ImageHeight,
		Steps:    o.cfg.AI.ImageSteps,
		CFGScale: o.cfg.AI.ImageCFGScale,
		Format:   o.cfg.AI.ImageFormat,
		Variants: o.cfg.AI.ImageVariants,
		SafeMode: o.cfg.AI.ImageSafeMode,
	}
}

func (o *Orchestrator) speechOptions() ai.SpeechOptions {
	return ai.SpeechOptions{
		Model: o.cfg.AI.SpeechModel,
		Voice: o.cfg.AI.SpeechVoice,
		Codec: o.cfg.AI.SpeechCodec,
		Speed: o.cfg.AI.SpeechSpeed,
	}
}
