package chats

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hairalyzer-backend/internal/shared/server/middleware"
	"hairalyzer-backend/internal/shared/server/respond"
	"hairalyzer-backend/internal/submissions"
)

// Handler wires chat endpoints to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/submissions/:id/chat", h.history)
	rg.POST("/submissions/:id/chat", h.send)
}

type sendRequest struct {
	Message string `json:"message"`
}

func (h *Handler) history(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.SubmissionIDKey, id)
	msgs, err := h.Svc.History(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"submissionId": id, "messages": msgs})
}

func (h *Handler) send(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.SubmissionIDKey, id)

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	reply, err := h.Svc.Send(c.Request.Context(), middleware.UserIDFromContext(c), id, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"reply": reply})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMessageTooLong):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), gin.H{"maxLength": MaxMessageRunes})
	case errors.Is(err, submissions.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "submission not found", nil)
	case errors.Is(err, ErrAssistantUnavailable):
		respond.Error(c, http.StatusBadGateway, "chat_unavailable", "the assistant is unavailable, try again later", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process chat message", nil)
	}
}
