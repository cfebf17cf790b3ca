package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"droneFoodDelivery/internal/apperr"
)

// statusFor maps an error kind to an HTTP status. Caller mistakes are 4xx,
// store failures 503.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidReference, apperr.KindEmptyOrder:
		return http.StatusUnprocessableEntity
	case apperr.KindInvalidState, apperr.KindNoDroneAvailable, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidItem, apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (h *Handler) writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	msg := err.Error()

	var e *apperr.Error
	if errors.As(err, &e) && kind == apperr.KindPersistence {
		// Store details stay in the log.
		msg = e.Op + ": store unavailable"
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.FullPath(), "kind", kind, "err", err)
	}
	c.AbortWithStatusJSON(status, errorBody{Error: msg, Kind: string(kind)})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: msg})
}
