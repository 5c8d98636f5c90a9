package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-todo-api/internal/middleware"
)

// Routes bundles the handlers mounted under /api.
type Routes struct {
	Auth   *AuthHandler
	Teams  *TeamHandler
	Todos  *TodoHandler
	Tokens middleware.TokenParser
}

// RegisterRoutes mounts every API endpoint on api.
func RegisterRoutes(api *gin.RouterGroup, r Routes) {
	requireAuth := middleware.RequireAuth(r.Tokens)

	// Auth routes (public)
	api.POST("/register", r.Auth.Register)
	api.POST("/login", r.Auth.Login)
	api.POST("/logout", r.Auth.Logout)
	api.GET("/me", requireAuth, r.Auth.GetCurrentUser)

	oauth := api.Group("/auth")
	{
		oauth.GET("/google", r.Auth.GoogleLogin)
		oauth.GET("/google/callback", r.Auth.GoogleCallback)
	}

	// Team routes (protected)
	teams := api.Group("/teams")
	teams.Use(requireAuth)
	{
		teams.GET("", r.Teams.ListTeams)
		teams.POST("", r.Teams.CreateTeam)
		teams.DELETE("/:id", r.Teams.DeleteTeam)
		teams.GET("/:id/members", r.Teams.ListMembers)
		teams.POST("/:id/members", r.Teams.AddMember)
		teams.DELETE("/:id/members/:userId", r.Teams.RemoveMember)
		teams.GET("/:id/todos", r.Todos.ListTeamTodos)
	}

	// Todo routes (protected)
	todos := api.Group("/todos")
	todos.Use(requireAuth)
	{
		todos.GET("/user/:userId", r.Todos.ListUserTodos)
		todos.POST("", r.Todos.CreateTodo)
		todos.PUT("/:id", r.Todos.UpdateTodo)
		todos.DELETE("/:id", r.Todos.DeleteTodo)
	}
}
