// Package gin mounts the gateway's HTTP endpoints on a Gin router.
package gin

import (
	"github.com/gin-gonic/gin"

	swishhttp "github.com/commercekit/swishpay/http"
)

// RegisterRoutes attaches the callback, wait and admin retrieval endpoints
// under the given router group. Pass the engine itself to mount at the root.
func RegisterRoutes(r gin.IRouter, h *swishhttp.Handler) {
	r.POST("/swish/callback", gin.WrapF(h.Callback))
	r.GET("/swish/wait", gin.WrapF(h.Wait))
	r.POST("/swish/admin/retrieve", gin.WrapF(h.Retrieve))
}
