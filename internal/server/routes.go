package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/glosshub/glosshub/internal/server/api"
	"github.com/glosshub/glosshub/internal/server/biz"
	"github.com/glosshub/glosshub/internal/server/middleware"
)

type Handlers struct {
	fx.In

	Annotations *api.AnnotationHandlers
}

type Services struct {
	fx.In

	AuthService *biz.AuthService
}

func SetupRoutes(server *Server, handlers Handlers, services Services) {
	server.Use(middleware.Recovery())
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithTrace(server.Config.Trace))

	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	apiGroup := server.Group("/api",
		middleware.WithTimeout(server.Config.RequestTimeout),
		middleware.WithIdentity(services.AuthService),
	)

	{
		annotationGroup := apiGroup.Group("/annotations")
		annotationGroup.GET("", handlers.Annotations.List)
		annotationGroup.GET("/:id", handlers.Annotations.Get)

		moderationGroup := annotationGroup.Group("", middleware.RequireUser())
		moderationGroup.PUT("/:id/hide", handlers.Annotations.Hide)
		moderationGroup.DELETE("/:id/hide", handlers.Annotations.Unhide)
		moderationGroup.PUT("/:id/flag", handlers.Annotations.Flag)
		moderationGroup.DELETE("/:id/flag", handlers.Annotations.Unflag)
	}
}
