package api

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

const (
	detailInvalidCredentials = "Invalid credentials"
	detailNotAuthenticated   = "Could not validate credentials"
)

var errorKinds = []struct {
	err    error
	status int
}{
	{model.ErrNotFound, http.StatusNotFound},
	{model.ErrConflict, http.StatusConflict},
	{model.ErrForbidden, http.StatusForbidden},
	{model.ErrValidation, http.StatusBadRequest},
}

// detail strips the error kind prefix from err's message.
func detail(err, kind error) string {
	msg := strings.TrimPrefix(err.Error(), kind.Error()+": ")
	if msg == "" {
		return kind.Error()
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}

// abortUnauthenticated answers 401 with the bearer challenge.
func abortUnauthenticated(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msg})
}

// respondError maps err to a status code and a {"detail": ...} body.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrUnauthenticated) {
		abortUnauthenticated(c, detailNotAuthenticated)
		return
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			c.AbortWithStatusJSON(k.status, gin.H{"detail": detail(err, k.err)})
			return
		}
	}

	log.Ctx(c.Request.Context()).Error().Err(err).
		Str("route", c.FullPath()).
		Msg("Request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}
