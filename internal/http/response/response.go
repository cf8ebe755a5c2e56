// Package response owns the JSON envelopes the dev server speaks. Errors
// always serialize as {"error": {"message", "code"}} so the SDK's envelope
// decoding has one shape to rely on.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAppError maps a kind-tagged service error onto its HTTP status.
func RespondAppError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	switch kind {
	case apperrors.KindValidation, apperrors.KindUnsupported:
		RespondError(c, http.StatusBadRequest, string(kind), err)
	case apperrors.KindAuthRequired:
		RespondError(c, http.StatusUnauthorized, string(kind), err)
	case apperrors.KindNotFound:
		RespondError(c, http.StatusNotFound, string(kind), err)
	case apperrors.KindInvalidState:
		RespondError(c, http.StatusConflict, string(kind), err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
