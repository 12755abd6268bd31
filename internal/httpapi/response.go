package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/learnpath/internal/apperr"
)

// APIError is the error body returned by every endpoint.
type APIError struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

// ErrorEnvelope wraps APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	env := ErrorEnvelope{Error: APIError{Message: msg, Code: code}}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		env.Error.Message = "validation failed"
		env.Error.Fields = ve.Fields
	}
	c.JSON(status, env)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.ErrorKind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindAlreadyCompleted, apperr.KindInvalidState:
		return http.StatusConflict
	case apperr.KindGeneration, apperr.KindExternal:
		return http.StatusBadGateway
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail classifies err and writes the matching error response. Internal
// and persistence failures hide their detail from the client.
func (s *Server) fail(c *gin.Context, err error) {
	kind := apperr.Kind(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(),
			"kind", string(kind), "error", err)
	}
	if kind == apperr.KindInternal || kind == apperr.KindPersistence {
		err = errors.New("internal error")
	}
	respondError(c, status, string(kind), err)
}
