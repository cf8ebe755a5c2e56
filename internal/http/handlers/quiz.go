package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dermatch/dermatch-go/internal/http/response"
	"github.com/dermatch/dermatch-go/internal/pkg/ctxutil"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/services"
)

type QuizHandler struct {
	log     *logger.Logger
	svc     services.QuizService
	catalog services.CatalogService
}

func NewQuizHandler(log *logger.Logger, svc services.QuizService, catalog services.CatalogService) *QuizHandler {
	return &QuizHandler{
		log:     log.With("handler", "QuizHandler"),
		svc:     svc,
		catalog: catalog,
	}
}

// GET /quiz/questions
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	view, err := h.catalog.ListQuestions(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /quiz/start
func (h *QuizHandler) StartSession(c *gin.Context) {
	view, err := h.svc.StartSession(c.Request.Context(), callerFrom(c))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, view)
}

type submitAnswerRequest struct {
	SessionID  string   `json:"session_id"`
	QuestionID string   `json:"question_id"`
	ChoiceIDs  []string `json:"choice_ids"`
}

// POST /quiz/answer
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid answer body: %w", err))
		return
	}
	if err := h.svc.SubmitAnswer(c.Request.Context(), callerFrom(c), req.SessionID, req.QuestionID, req.ChoiceIDs); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /quiz/submit?session_id=
func (h *QuizHandler) FinalizeSession(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("session_id query parameter required"))
		return
	}
	view, err := h.svc.FinalizeSession(c.Request.Context(), callerFrom(c), sessionID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /quiz/session/:id
func (h *QuizHandler) GetSession(c *gin.Context) {
	view, err := h.svc.GetSession(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// callerFrom translates the middleware-resolved request data into the
// service-layer caller identity.
func callerFrom(c *gin.Context) services.Caller {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		return services.Caller{}
	}
	return services.Caller{UserID: rd.UserID, AnonID: rd.AnonID}
}
