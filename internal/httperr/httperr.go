package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternal       = "INTERNAL"
)

type HTTPError struct {
	Code    string `json:"errorCode"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, kind Kind, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Kind:    kind,
		Message: message,
	})
}

func Abort(c *gin.Context, err BusinessError) {
	c.AbortWithStatusJSON(err.HTTPStatus(), HTTPError{
		Code:    err.Code,
		Kind:    err.Kind,
		Message: err.Message,
	})
}

// Respond writes err as a JSON error. Anything that is not a BusinessError is
// logged and reported as a generic 500 so internals never reach the client.
func Respond(c *gin.Context, err error) {
	if be, ok := AsBusiness(err); ok {
		if be.Kind == KindIntegrity || be.Kind == KindInternal {
			logger(c).Error().Err(err).Str("error_code", be.Code).Msg("request failed")
		}
		Write(c, be.HTTPStatus(), be.Kind, be.Code, be.Message)
		return
	}

	logger(c).Error().Err(err).Msg("unhandled error")
	Internal(c, CodeInternal, "Internal server error.")
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, KindValidation, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, KindNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, KindInternal, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, KindAuthentication, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, KindAuthorization, code, message)
}

func logger(c *gin.Context) *zerolog.Logger {
	return zerolog.Ctx(c.Request.Context())
}
