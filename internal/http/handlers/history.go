package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dermatch/dermatch-go/internal/http/response"
	"github.com/dermatch/dermatch-go/internal/pkg/ctxutil"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/services"
)

type HistoryHandler struct {
	log *logger.Logger
	svc services.HistoryService
}

func NewHistoryHandler(log *logger.Logger, svc services.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		log: log.With("handler", "HistoryHandler"),
		svc: svc,
	}
}

// GET /quiz/history
func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	view, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /quiz/history/profile/:id
func (h *HistoryHandler) GetDetail(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	view, err := h.svc.GetDetailByProfile(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// DELETE /quiz/history/:id
func (h *HistoryHandler) Delete(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	receipt, err := h.svc.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, receipt)
}

// authedUser returns the verified user id; the auth middleware guarantees
// one on these routes, so a miss is a wiring bug surfaced as a 401.
func authedUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || !rd.Authenticated() {
		response.RespondError(c, http.StatusUnauthorized, "auth_required", fmt.Errorf("authentication required"))
		c.Abort()
		return uuid.Nil, false
	}
	return rd.UserID, true
}
