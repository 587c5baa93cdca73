package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/feelbetter/backend/internal/handler/chat"
	middlewarePkg "github.com/zhouzirui/feelbetter/backend/internal/middleware"
	"github.com/zhouzirui/feelbetter/backend/pkg/utils"
)

// Health 描述 /health 返回的服务状态。
type Health struct {
	LLMEnabled      bool
	EmotionProvider string
	EmotionEnabled  bool
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	LLM     bool   `json:"llm"`
	Emotion string `json:"emotion"`
}

// NewRouter wires HTTP routes to core services.
func NewRouter(allowedOrigins []string, chatSvc chat.Service, health Health) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewarePkg.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	chatHandler := chat.New(chatSvc)
	chatHandler.RegisterRoutes(r)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		emotion := "disabled"
		if health.EmotionEnabled {
			emotion = health.EmotionProvider
		}
		utils.RespondJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			LLM:     health.LLMEnabled,
			Emotion: emotion,
		})
	})

	return r
}
