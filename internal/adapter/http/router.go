package http

import (
	"github.com/gin-gonic/gin"
	"github.com/kasirlab/kasir-pos/internal/adapter/http/middleware"
	"github.com/kasirlab/kasir-pos/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(pos *POSHandler, pay *PaymentHandler, th *TokenHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	// Gateway webhook; authenticated by the gateway's own signature
	// scheme upstream, not by terminal tokens.
	r.POST("/v1/payment/notify", pay.Notify)

	v1 := r.Group("/v1")
	{
		v1.POST("/scan", authz.Require("pos.scan"), pos.Scan)
		v1.GET("/cart", authz.Require("pos.scan"), pos.GetCart)
		v1.PATCH("/cart/items/:uid", authz.Require("pos.scan"), pos.UpdateLine)
		v1.DELETE("/cart/items/:uid", authz.Require("pos.scan"), pos.RemoveLine)
		v1.DELETE("/cart", authz.Require("pos.scan"), pos.ClearCart)
		v1.POST("/checkout", authz.Require("pos.checkout"), pos.Checkout)
	}

	return r
}
