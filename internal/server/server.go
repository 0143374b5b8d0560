package server

import (
	"context"
	"net/http"

	"CharacterChat/internal/ai"
	"CharacterChat/internal/app/orchestrator"
	"CharacterChat/internal/config"
	"CharacterChat/internal/gatekeeper"
	"CharacterChat/internal/service/character"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// userTokenHeader — заголовок с пользовательским токеном платформы,
// который браузерный клиент пересылает с каждым запросом.
const userTokenHeader = "X-User-Token"

// Turner — операции транспортной границы, реализуемые оркестратором.
type Turner interface {
	ChatTurn(ctx context.Context, turns []ai.Turn, params map[string]any, voiceRequested bool) (*orchestrator.ChatResult, error)
	ImageTurn(ctx context.Context, prompt string, edit bool, imageURL string, params map[string]any) (*orchestrator.ImageResult, error)
}

// Access — проверка личности и права доступа на стороне платформы.
type Access interface {
	Identify(ctx context.Context, userToken string) (string, error)
	CheckAccess(ctx context.Context, experienceID, userID string) (bool, error)
	User(ctx context.Context, userID string) (*gatekeeper.Profile, error)
}

// Handlers — тонкие HTTP‑обработчики над операциями оркестратора.
type Handlers struct {
	cfg    *config.Config
	turns  Turner
	gate   Access
	char   character.Character
	logger *zap.SugaredLogger
}

func NewHandlers(cfg *config.Config, turns Turner, gate Access, char character.Character, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{cfg: cfg, turns: turns, gate: gate, char: char, logger: logger}
}

// NewRouter собирает маршруты API. CORS открыт для заданного origin
// (пустой origin — разрешены все: локальная разработка).
func NewRouter(cfg *config.Config, h *Handlers) *gin.Engine {
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if cfg.CORSOrigin != "" {
		corsCfg.AllowOrigins = []string{cfg.CORSOrigin}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, userTokenHeader)
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Health)

	api := r.Group("/api", h.RequireAccess)
	api.GET("/session", h.Session)
	api.POST("/chat", h.Chat)
	api.POST("/image", h.Image)
	return r
}

// Health — проверка живости.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequireAccess — middleware проверки доступа: токен → личность → решение
// платформы. Отрицательное решение терминально для сессии.
// Если experience не сконфигурирован, проверка выключена (локальный запуск).
func (h *Handlers) RequireAccess(c *gin.Context) {
	if h.cfg.Gatekeeper.ExperienceID == "" {
		c.Next()
		return
	}
	token := c.GetHeader(userTokenHeader)
	userID, err := h.gate.Identify(c.Request.Context(), token)
	if err != nil {
		h.logger.Warnw("Не удалось установить личность пользователя", "error", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ok, err := h.gate.CheckAccess(c.Request.Context(), h.cfg.Gatekeeper.ExperienceID, userID)
	if err != nil {
		h.logger.Errorw("Не удалось проверить доступ", "user", userID, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "access check failed"})
		return
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}
	c.Set("userID", userID)
	c.Next()
}

// Session отдаёт данные старта сессии: имя пользователя и персонажа.
// Имя — best‑effort: без него сессия всё равно создаётся.
func (h *Handlers) Session(c *gin.Context) {
	userName := ""
	if userID := c.GetString("userID"); userID != "" {
		if p, err := h.gate.User(c.Request.Context(), userID); err != nil {
			h.logger.Warnw("Не удалось получить профиль пользователя", "user", userID, "error", err)
		} else {
			userName = p.Name
		}
	}
	c.JSON(http.StatusOK, gin.H{"userName": userName, "character": h.char})
}
