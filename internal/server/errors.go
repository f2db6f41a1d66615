package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phrasefit/phrasefit/internal/match"
	"github.com/phrasefit/phrasefit/internal/openrouter"
)

type errorEnvelope struct {
	Type  string     `json:"type"`
	Error errorInner `json:"error"`
}

type errorInner struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, errType, message string) {
	c.AbortWithStatusJSON(status, errorEnvelope{
		Type: "error",
		Error: errorInner{
			Type:    errType,
			Message: message,
		},
	})
}

// writeErrorFrom maps the client's error taxonomy onto HTTP statuses.
// Upstream statuses pass through; malformed upstream replies surface as
// 502 so callers can tell them from our own 4xx validation failures.
func writeErrorFrom(c *gin.Context, err error) {
	var confErr *openrouter.ConfigError
	var statusErr *openrouter.StatusError
	var shapeErr *openrouter.ShapeError
	var parseErr *openrouter.ParseError

	switch {
	case errors.Is(err, match.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &confErr):
		writeError(c, http.StatusBadRequest, "config_error", err.Error())
	case errors.As(err, &statusErr):
		status := statusErr.Code
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeError(c, status, "upstream_error", err.Error())
	case errors.As(err, &shapeErr), errors.As(err, &parseErr):
		writeError(c, http.StatusBadGateway, "upstream_shape_error", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "api_error", err.Error())
	}
}
