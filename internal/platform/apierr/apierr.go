package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/gin-gonic/gin"
)

// 客户端可识别的错误码
const (
	CodeUnknown             = "unknown"
	CodePackageFileNotFound = "packageFileNotFound"
	CodeInvalidFinishTime   = "invalidFinishTime"
	CodeGameInfoNotFound    = "gameInfoNotFound"
	CodeUnsupportedPlatform = "unsupportedPlatform"
	CodeInvalidDuration     = "invalidDuration"
	CodeMissingPackageHash  = "missingPackageHash"
	CodeInvalidRequest      = "invalidRequest"
	CodeInvalidSource       = "invalidSource"
	CodeNotFound            = "notFound"
	CodeUnauthorized        = "unauthorized"
	CodeTooManyRequests     = "tooManyRequests"
	CodeServiceUnavailable  = "serviceUnavailable"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

// Response 是错误响应体
type Response struct {
	ErrorCode string `json:"errorCode"`
}

// Middleware 把处理函数通过 c.Error 记录的最后一个错误渲染为 {"errorCode": ...}。
// 非 *Error 的错误一律按500处理，并记录日志。
func Middleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *Error
		if errors.As(err, &apiErr) {
			if apiErr.Status >= http.StatusInternalServerError {
				log.Error("request failed", "path", c.FullPath(), "code", apiErr.Code, "error", err)
			}
			c.JSON(apiErr.Status, Response{ErrorCode: apiErr.Code})
			return
		}

		log.Error("unhandled request error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, Response{ErrorCode: CodeUnknown})
	}
}
