package config

import (
	"flag"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode bool `env:"DEBUG_MODE"` // Режим дебага

	// HTTP‑сервер
	ListenAddr string `env:"LISTEN_ADDR"` // Адрес слушателя, напр. 127.0.0.1:8080
	CORSOrigin string `env:"CORS_ORIGIN"` // Разрешённый origin для браузерного клиента; пусто — разрешить все

	// Провайдер генеративного ИИ (один ключ на все возможности)
	AI AIConfig

	// Движок сессии
	HistoryLimit      int    `env:"HISTORY_LIMIT"`       // Сколько последних текстовых сообщений уходит в контекст
	SystemPrompt      string `env:"SYSTEM_PROMPT"`       // Системная инструкция по умолчанию (если у персонажа нет slug)
	SnapshotPath      string `env:"SNAPSHOT_PATH"`       // Путь к файлу снимка сессии для cmd/companion
	DefaultThreadName string `env:"DEFAULT_THREAD_NAME"` // Имя диалога, создаваемого при старте

	// Персонаж (поставляется платформой один раз на сессию; здесь — дефолты для CLI)
	Character CharacterConfig

	// Gatekeeper — проверка личности и доступа на стороне платформы
	Gatekeeper GatekeeperConfig
}

// AIConfig конфигурация шлюза провайдера. Один API‑ключ покрывает чат, зрение,
// генерацию изображений и синтез речи.
type AIConfig struct {
	APIKey         string `env:"AI_API_KEY"`   // Ключ берём из .env/ENV. Если пуст — ошибка при создании клиента
	BaseURL        string `env:"AI_BASE_URL"`  // Базовый URL провайдера
	TimeoutSeconds int    `env:"AI_TIMEOUT_S"` // Таймаут HTTP‑транспорта, в секундах

	ChatModel   string  `env:"AI_CHAT_MODEL"`   // Модель для диалога
	VisionModel string  `env:"AI_VISION_MODEL"` // Модель для описания изображений
	Temperature float64 `env:"AI_TEMPERATURE"`
	TopP        float64 `env:"AI_TOP_P"`
	MaxTokens   int     `env:"AI_MAX_TOKENS"` // Бюджет токенов ответа

	ImageModel    string  `env:"AI_IMAGE_MODEL"`     // Модель генерации изображений
	ImageWidth    int     `env:"AI_IMAGE_WIDTH"`     // Ширина в пикселях
	ImageHeight   int     `env:"AI_IMAGE_HEIGHT"`    // Высота в пикселях
	ImageSteps    int     `env:"AI_IMAGE_STEPS"`     // Число шагов диффузии
	ImageCFGScale float64 `env:"AI_IMAGE_CFG_SCALE"` // Сила следования промпту
	ImageFormat   string  `env:"AI_IMAGE_FORMAT"`    // png|jpeg|webp
	ImageVariants int     `env:"AI_IMAGE_VARIANTS"`  // Сколько вариантов запрашивать; используется первый
	ImageSafeMode bool    `env:"AI_IMAGE_SAFE_MODE"` // Фильтр небезопасного контента

	SpeechModel string  `env:"AI_SPEECH_MODEL"` // Модель синтеза речи
	SpeechVoice string  `env:"AI_SPEECH_VOICE"` // Идентификатор голоса
	SpeechCodec string  `env:"AI_SPEECH_CODEC"` // mp3|opus|aac
	SpeechSpeed float64 `env:"AI_SPEECH_SPEED"` // Множитель скорости речи
}

// CharacterConfig дефолтное описание персонажа для локального запуска.
// В серверном режиме персонаж приходит от платформы через Gatekeeper.
type CharacterConfig struct {
	Slug              string `env:"CHARACTER_SLUG"`      // Slug персоны у провайдера; пусто — обычный ассистент
	DisplayName       string `env:"CHARACTER_NAME"`      // Отображаемое имя
	ReferenceImageURL string `env:"CHARACTER_IMAGE_URL"` // Референсное изображение для режима правки
}

// GatekeeperConfig конфигурация клиента проверки доступа.
type GatekeeperConfig struct {
	BaseURL      string `env:"GATE_BASE_URL"`      // Базовый URL платформы
	APIKey       string `env:"GATE_API_KEY"`       // Ключ приложения
	ExperienceID string `env:"GATE_EXPERIENCE_ID"` // Идентификатор опыта, к которому проверяем доступ
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:         false,
		ListenAddr:        "127.0.0.1:8080",
		CORSOrigin:        "",
		HistoryLimit:      20,
		SystemPrompt:      "Ты дружелюбный виртуальный собеседник. Отвечай в характере и поддерживай разговор.",
		SnapshotPath:      "data/session.json",
		DefaultThreadName: "Чат 1",
		AI: AIConfig{
			APIKey:         "", // ключ берём из .env/ENV, если пусто — ошибка при создании клиента
			BaseURL:        "https://api.venice.ai/api/v1",
			TimeoutSeconds: 120,
			ChatModel:      "llama-3.3-70b",
			VisionModel:    "qwen-2.5-vl",
			Temperature:    0.8,
			TopP:           0.9,
			MaxTokens:      700,
			ImageModel:     "venice-sd35",
			ImageWidth:     1024,
			ImageHeight:    1024,
			ImageSteps:     20,
			ImageCFGScale:  7.0,
			ImageFormat:    "png", // поддерживаемые форматы: png|jpeg|webp
			ImageVariants:  1,
			ImageSafeMode:  false,
			SpeechModel:    "tts-kokoro",
			SpeechVoice:    "af_sky",
			SpeechCodec:    "mp3", // проигрывание в cmd/companion поддерживается для mp3 и wav
			SpeechSpeed:    1.0,
		},
		Character: CharacterConfig{},
		Gatekeeper: GatekeeperConfig{
			BaseURL: "https://api.whop.com/api/v5",
		},
	}
}

// NewConfig загружает конфигурацию приложения.
func NewConfig() *Config {
	_ = godotenv.Load()

	// Стартуем с дефолтов, затем перекрываем .env/окружением и флагами
	cfg := Defaults()
	_ = env.Parse(cfg)

	flag.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага")
	flag.StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "адрес HTTP сервера, напр. 127.0.0.1:8080")
	flag.StringVar(&cfg.CORSOrigin, "cors-origin", cfg.CORSOrigin, "разрешённый origin браузерного клиента; пусто — все")
	flag.IntVar(&cfg.HistoryLimit, "history-limit", cfg.HistoryLimit, "сколько последних текстовых сообщений уходит в контекст")
	flag.StringVar(&cfg.SystemPrompt, "system-prompt", cfg.SystemPrompt, "системная инструкция по умолчанию (если у персонажа нет slug)")
	flag.StringVar(&cfg.SnapshotPath, "snapshot-path", cfg.SnapshotPath, "путь к файлу снимка сессии")
	flag.StringVar(&cfg.DefaultThreadName, "default-thread-name", cfg.DefaultThreadName, "имя диалога, создаваемого при старте")
	// Провайдер
	flag.StringVar(&cfg.AI.APIKey, "ai-api-key", cfg.AI.APIKey, "API ключ провайдера (перекрывает ENV)")
	flag.StringVar(&cfg.AI.BaseURL, "ai-base-url", cfg.AI.BaseURL, "базовый URL провайдера")
	flag.IntVar(&cfg.AI.TimeoutSeconds, "ai-timeout-seconds", cfg.AI.TimeoutSeconds, "таймаут HTTP транспорта провайдера в секундах")
	flag.StringVar(&cfg.AI.ChatModel, "ai-chat-model", cfg.AI.ChatModel, "модель диалога")
	flag.StringVar(&cfg.AI.VisionModel, "ai-vision-model", cfg.AI.VisionModel, "модель описания изображений")
	flag.Float64Var(&cfg.AI.Temperature, "ai-temperature", cfg.AI.Temperature, "температура сэмплирования")
	flag.Float64Var(&cfg.AI.TopP, "ai-top-p", cfg.AI.TopP, "nucleus sampling top_p")
	flag.IntVar(&cfg.AI.MaxTokens, "ai-max-tokens", cfg.AI.MaxTokens, "бюджет токенов ответа")
	// Изображения
	flag.StringVar(&cfg.AI.ImageModel, "ai-image-model", cfg.AI.ImageModel, "модель генерации изображений")
	flag.IntVar(&cfg.AI.ImageWidth, "ai-image-width", cfg.AI.ImageWidth, "ширина изображения")
	flag.IntVar(&cfg.AI.ImageHeight, "ai-image-height", cfg.AI.ImageHeight, "высота изображения")
	flag.IntVar(&cfg.AI.ImageSteps, "ai-image-steps", cfg.AI.ImageSteps, "число шагов диффузии")
	flag.Float64Var(&cfg.AI.ImageCFGScale, "ai-image-cfg-scale", cfg.AI.ImageCFGScale, "guidance scale")
	flag.StringVar(&cfg.AI.ImageFormat, "ai-image-format", cfg.AI.ImageFormat, "формат вывода (png|jpeg|webp)")
	flag.IntVar(&cfg.AI.ImageVariants, "ai-image-variants", cfg.AI.ImageVariants, "сколько вариантов запрашивать")
	flag.BoolVar(&cfg.AI.ImageSafeMode, "ai-image-safe-mode", cfg.AI.ImageSafeMode, "включить фильтр небезопасного контента")
	// Речь
	flag.StringVar(&cfg.AI.SpeechModel, "ai-speech-model", cfg.AI.SpeechModel, "модель синтеза речи")
	flag.StringVar(&cfg.AI.SpeechVoice, "ai-speech-voice", cfg.AI.SpeechVoice, "идентификатор голоса")
	flag.StringVar(&cfg.AI.SpeechCodec, "ai-speech-codec", cfg.AI.SpeechCodec, "кодек аудио (mp3|opus|aac)")
	flag.Float64Var(&cfg.AI.SpeechSpeed, "ai-speech-speed", cfg.AI.SpeechSpeed, "множитель скорости речи")
	// Персонаж
	flag.StringVar(&cfg.Character.Slug, "character-slug", cfg.Character.Slug, "slug персоны у провайдера")
	flag.StringVar(&cfg.Character.DisplayName, "character-name", cfg.Character.DisplayName, "отображаемое имя персонажа")
	flag.StringVar(&cfg.Character.ReferenceImageURL, "character-image-url", cfg.Character.ReferenceImageURL, "URL референсного изображения персонажа")
	// Gatekeeper
	flag.StringVar(&cfg.Gatekeeper.BaseURL, "gate-base-url", cfg.Gatekeeper.BaseURL, "базовый URL платформы проверки доступа")
	flag.StringVar(&cfg.Gatekeeper.APIKey, "gate-api-key", cfg.Gatekeeper.APIKey, "ключ приложения платформы")
	flag.StringVar(&cfg.Gatekeeper.ExperienceID, "gate-experience-id", cfg.Gatekeeper.ExperienceID, "идентификатор опыта для проверки доступа")
	flag.Parse()

	cfg.AI.ImageFormat = strings.ToLower(strings.TrimSpace(cfg.AI.ImageFormat))
	cfg.AI.SpeechCodec = strings.ToLower(strings.TrimSpace(cfg.AI.SpeechCodec))

	return cfg
}
