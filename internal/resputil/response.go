package resputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propline/bidboard/pkg/apperror"
)

// Response is the uniform envelope of every endpoint. The generic
// parameter exists for the swagger annotations.
type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

func wrapResponse(c *gin.Context, httpCode int, msg string, data any, code ErrorCode) {
	c.JSON(httpCode, Response[any]{
		Code: code,
		Data: data,
		Msg:  msg,
	})
}

func Success(c *gin.Context, data any) {
	wrapResponse(c, http.StatusOK, "", data, OK)
}

// Error reports a failure with a 500 status.
func Error(c *gin.Context, msg string, errorCode ErrorCode) {
	wrapResponse(c, http.StatusInternalServerError, msg, nil, errorCode)
}

// HTTPError reports a failure with an explicit status.
func HTTPError(c *gin.Context, httpCode int, msg string, errorCode ErrorCode) {
	wrapResponse(c, httpCode, msg, nil, errorCode)
}

func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, InvalidRequest)
}

// ServiceError maps a service-layer error to the envelope. The mapping
// follows the taxonomy: validation 400, authentication 401,
// authorization 403, not-found 404, conflict 409, dependency 503.
func ServiceError(c *gin.Context, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		HTTPError(c, http.StatusBadRequest, err.Error(), InvalidRequest)
	case apperror.KindAuthentication:
		HTTPError(c, http.StatusUnauthorized, err.Error(), TokenInvalid)
	case apperror.KindAuthorization:
		HTTPError(c, http.StatusForbidden, err.Error(), UserNotAllowed)
	case apperror.KindNotFound:
		HTTPError(c, http.StatusNotFound, err.Error(), ResourceNotFound)
	case apperror.KindConflict:
		HTTPError(c, http.StatusConflict, err.Error(), StateConflict)
	default:
		HTTPError(c, http.StatusServiceUnavailable, err.Error(), DependencyFailed)
	}
}
