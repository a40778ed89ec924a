package http

import (
	"net/http"

	"chart-analyzer/pkg/common"

	"github.com/labstack/echo/v4"
)

// RegisterHealthRoute registers the liveness probe on e.
func RegisterHealthRoute(e *echo.Echo) {
	e.GET(common.RouteHealthz, Healthz)
}

// Healthz godoc
// @Summary Liveness probe
// @Tags health
// @Produce plain
// @Success 200 {string} string "ok"
// @Router /healthz [get]
func Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
