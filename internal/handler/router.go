package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/redweb-api/internal/middleware"
)

// Handlers собирает все обработчики API
type Handlers struct {
	Auth         *AuthHandler
	Verification *VerificationHandler
	Password     *PasswordHandler
	User         *UserHandler
	Character    *CharacterHandler
	Scene        *SceneHandler
}

// RouteOptions - middleware, общие для групп маршрутов
type RouteOptions struct {
	Auth *middleware.AuthMiddleware
	// AuthLimit ограничивает частоту регистрации, входа и сброса пароля; nil отключает
	AuthLimit gin.HandlerFunc
}

// RegisterRoutes регистрирует маршруты /api
func RegisterRoutes(router gin.IRouter, h Handlers, opts RouteOptions) {
	limited := []gin.HandlerFunc{}
	if opts.AuthLimit != nil {
		limited = append(limited, opts.AuthLimit)
	}
	with := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, limited...), handler)
	}

	api := router.Group("/api")
	{
		api.POST("/register", with(h.Auth.Register)...)
		api.POST("/login", with(h.Auth.Login)...)
		api.POST("/register/send-code", with(h.Verification.SendCode)...)
		api.POST("/register/verify-code", with(h.Verification.VerifyCode)...)

		password := api.Group("/password/reset")
		password.POST("/send-code", with(h.Password.SendResetCode)...)
		password.POST("/verify-code", with(h.Password.VerifyResetCode)...)
		password.POST("/update", with(h.Password.UpdatePassword)...)

		authed := api.Group("")
		authed.Use(opts.Auth.RequireAuth())
		{
			authed.GET("/session", h.Auth.Session)
			authed.POST("/logout", h.Auth.Logout)
			authed.GET("/profile", h.User.GetProfile)
			authed.PUT("/profile", h.User.UpdateProfile)

			characters := authed.Group("/characters")
			characters.GET("", h.Character.List)
			characters.POST("", h.Character.Create)
			characters.GET("/export", h.Character.Export)
			characterWithID := characters.Group("/:id", middleware.ExtractUintParam("id", characterIDKey))
			characterWithID.GET("", h.Character.Get)
			characterWithID.PUT("", h.Character.Update)
			characterWithID.DELETE("", h.Character.Delete)

			scenes := authed.Group("/scenes")
			scenes.GET("", h.Scene.List)
			scenes.POST("", h.Scene.Create)
			sceneWithID := scenes.Group("/:id", middleware.ExtractUintParam("id", sceneIDKey))
			sceneWithID.GET("", h.Scene.Get)
			sceneWithID.PUT("", h.Scene.Update)
			sceneWithID.DELETE("", h.Scene.Delete)
			sceneWithID.POST("/npcs", h.Scene.AssignNPC)
			sceneWithID.POST("/npcs/:npcId/injuries", middleware.ExtractUintParam("npcId", npcIDKey), h.Scene.AddInjury)
		}
	}
}
