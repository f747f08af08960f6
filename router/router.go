package router

import (
	"log"

	"kbase/controllers"
	"kbase/middleware"
	"kbase/permissions"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares.
// Leitura é pública; escrita passa por autenticação + permissão e, na
// criação de conteúdo, pelo gate de setor.
func Initialize(r *gin.Engine) {
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")

	// Public (no auth)
	api.POST("/login", Logger(), controllers.Login)
	api.POST("/users", Logger(), controllers.AuthOptional(), controllers.CreateUser)

	// Conteúdo: caminho de leitura aberto
	api.GET("/contents", Logger(), controllers.GetContents)
	api.GET("/contents/type/:type", Logger(), controllers.GetContentsByType)
	api.GET("/contents/sector/:sector", Logger(), controllers.GetContentsBySector)
	api.GET("/contents/:id", Logger(), controllers.GetContentByID)
	api.POST("/contents/:id/view", Logger(), controllers.IncrementViews)

	// Authenticated routes (token required)
	auth := api.Group("")
	auth.Use(controllers.AuthRequired())

	auth.GET("/users/me", Logger(), controllers.Me)
	auth.GET("/users", Logger(), Authorize(permissions.PERMISSION_READ_USER), controllers.GetUsers)
	auth.GET("/users/:id", Logger(), Authorize(permissions.PERMISSION_READ_USER), controllers.GetUserByID)
	auth.PUT("/users/:id", Logger(), controllers.UpdateUser)
	auth.DELETE("/users/:id", Logger(), Authorize(permissions.PERMISSION_DELETE_USER), controllers.DeleteUser)

	auth.POST("/contents", Logger(),
		Authorize(permissions.PERMISSION_CREATE_CONTENT),
		SectorAccess(""),
		controllers.CreateContent)
	auth.PUT("/contents/:id", Logger(),
		Authorize(permissions.PERMISSION_UPDATE_CONTENT),
		controllers.UpdateContent)
	auth.POST("/contents/:id/additions", Logger(),
		Authorize(permissions.PERMISSION_UPDATE_CONTENT),
		controllers.AddAddition)
	auth.DELETE("/contents/:id", Logger(),
		Authorize(permissions.PERMISSION_DELETE_CONTENT),
		controllers.DeleteContent)

	log.Printf("Routes initialized")
}
