// Package echo mounts the gateway's HTTP endpoints on an Echo router.
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	swishhttp "github.com/commercekit/swishpay/http"
)

// RegisterRoutes attaches the callback, wait and admin retrieval endpoints.
func RegisterRoutes(e *echo.Echo, h *swishhttp.Handler) {
	e.POST("/swish/callback", echo.WrapHandler(http.HandlerFunc(h.Callback)))
	e.GET("/swish/wait", echo.WrapHandler(http.HandlerFunc(h.Wait)))
	e.POST("/swish/admin/retrieve", echo.WrapHandler(http.HandlerFunc(h.Retrieve)))
}
