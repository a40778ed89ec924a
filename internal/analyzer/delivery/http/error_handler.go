package http

import (
	"errors"
	"fmt"
	"net/http"

	"chart-analyzer/internal/analyzer/dto"
	"chart-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors raised outside the handlers (routing,
// body limits, panics) in the same envelope as the API's own errors.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = fmt.Sprint(he.Message)
		}
		if code >= http.StatusInternalServerError {
			log.Error("Unhandled request error",
				logger.ErrorField(err),
				logger.StringField("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			message = http.StatusText(code)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, dto.ErrorResponse{Error: message})
		}
		if err != nil {
			log.Warn("Failed to write error response", logger.ErrorField(err))
		}
	}
}
