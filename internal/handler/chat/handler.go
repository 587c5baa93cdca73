package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/feelbetter/backend/internal/model/chat"
	chatService "github.com/zhouzirui/feelbetter/backend/internal/service/chat"
	"github.com/zhouzirui/feelbetter/backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// Service is the chat pipeline behind POST /chat.
type Service interface {
	Handle(ctx context.Context, req chat.Request) (chat.Response, error)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc Service
}

// New 创建聊天处理器
func New(chatSvc Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

// handleChat 处理一次对话请求。上游失败以 200 + 降级文本返回，只有请求本身非法时返回 400。
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req chat.Request
	if err := decodeRequest(r.Body, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.chatSvc.Handle(r.Context(), req)
	if err != nil {
		if errors.Is(err, chatService.ErrEmptyMessages) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[chat] unexpected error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// decodeRequest 只接受单个 JSON 对象，对象之后不允许出现其他内容。
func decodeRequest(body io.Reader, req *chat.Request) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(req); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after request body")
	}
	return nil
}
