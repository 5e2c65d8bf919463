package http

import (
	"errors"
	"net/http"
	"strconv"

	"elearning-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusFor maps a response code onto the HTTP status carried with the envelope.
func statusFor(code domain.Code) int {
	switch code {
	case domain.CodeSuccess:
		return http.StatusOK
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeFail:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func respond[T any](c *gin.Context, data T, err error, successMsg string) {
	env := domain.Result(data, err, successMsg)
	c.JSON(statusFor(env.Code), env)
}

func abortWith(c *gin.Context, err *domain.Error) {
	c.AbortWithStatusJSON(statusFor(err.Code), domain.Envelope[any]{Code: err.Code, Message: err.Message})
}

// bindJSON decodes and validates the body. On failure it writes an
// INVALID_DATA envelope listing the offending fields.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
	} else {
		fields["body"] = "malformed"
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, domain.Envelope[map[string]string]{
		Code:    domain.CodeInvalidData,
		Message: domain.CodeInvalidData.Message(),
		Data:    &fields,
	})
	return false
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWith(c, domain.WithMessage(domain.CodeInvalidData, "invalid "+name))
		return 0, false
	}
	return id, true
}
