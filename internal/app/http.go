package app

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"jk-calendar/internal/calendar"
	"jk-calendar/internal/config"
	"jk-calendar/internal/email"
	"jk-calendar/internal/routes"
	"jk-calendar/internal/storage"
)

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")

	// Calendar data is per-user; never cache
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Next()
}

func HTTPServer() *gin.Engine {
	r := gin.New()

	r.Use(routes.RequestID())
	r.Use(routes.AccessLog())
	r.Use(gin.Recovery())
	r.Use(securityHeaders)

	return r
}

func ServerMain(storageProvider storage.Provider) {

	if config.Cfg == nil {
		panic("Config not initialized.")
	}

	if storageProvider == nil {
		slog.Error("Storage provider is nil")
		os.Exit(1)
	}

	service := calendar.NewService(storageProvider,
		time.Duration(config.Cfg.StoreTimeout)*time.Second)

	var mailer *email.Client
	if config.Cfg.Email.Enabled() {
		mailer = email.NewClient(config.Cfg.Email)
		slog.Info("Invite notifications enabled", "host", config.Cfg.Email.Host)
	}

	server := HTTPServer()

	// Middleware to inject the service and mailer into the request context
	server.Use(func(c *gin.Context) {
		c.Set("Calendar", service)
		c.Next()
	})
	if mailer != nil {
		server.Use(func(c *gin.Context) {
			c.Set("Mailer", mailer)
			c.Next()
		})
	}

	routes.RegisterRoutes(server)

	if err := server.Run(config.Cfg.Listen); err != nil {
		slog.Error("HTTP server stopped", "error", err)
		os.Exit(1)
	}
}
