// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"goride/internal/http/handlers"
	"goride/internal/http/middleware"
	"goride/internal/modules/ride"
)

func NewRouter(machine *ride.Machine, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(log), middleware.Recovery(log))

	session := handlers.NewSessionHandler(machine)
	stream := handlers.NewStreamHandler(machine, log)

	api := r.Group("/api/session")
	api.GET("", session.Get)
	api.GET("/stream", stream.Stream)
	api.POST("/login", session.Login)
	api.POST("/current-location", session.UseCurrentLocation)
	api.PUT("/search", session.SetSearchText)
	api.POST("/focus", session.Focus)
	api.POST("/map-tap", session.MapTap)
	api.POST("/suggestions/select", session.SelectSuggestion)
	api.POST("/find-rides", session.FindRides)
	api.POST("/vehicle", session.SelectVehicle)
	api.POST("/proceed", session.Proceed)
	api.PUT("/payment-method", session.SetPaymentMethod)
	api.POST("/confirm-payment", session.ConfirmPayment)
	api.POST("/cancel", session.Cancel)
	api.POST("/back", session.Back)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
