package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/yungbote/nutribridge-backend/internal/pkg/errors"
	"github.com/yungbote/nutribridge-backend/internal/platform/apierr"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type ErrorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Status:  StatusError,
		Message: msg,
		Code:    code,
	})
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Status:  StatusError,
		Message: msg,
		Code:    code,
	})
}

// RespondServiceError maps a service error onto the envelope. apierr.Error
// carries its own status; the shared sentinels map to their 4xx codes and
// anything else is a 500 whose detail stays in the logs.
func RespondServiceError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	switch {
	case errors.Is(err, errs.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, errs.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, errs.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, errs.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	default:
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
	}
}

func RespondOK(c *gin.Context, payload gin.H) {
	RespondStatus(c, http.StatusOK, payload)
}

// RespondAccepted is used by writes whose enrichment continues in a job.
func RespondAccepted(c *gin.Context, payload gin.H) {
	RespondStatus(c, http.StatusAccepted, payload)
}

func RespondStatus(c *gin.Context, status int, payload gin.H) {
	out := make(gin.H, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	out["status"] = StatusSuccess
	c.JSON(status, out)
}
