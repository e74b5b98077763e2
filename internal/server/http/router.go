package http

import (
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health-check", s.healthCheck)

	// public
	r.POST("/login", s.limiter.Handler(), s.login)
	r.POST("/refresh-token/:token", s.refreshToken)
	r.POST("/forgotten-password/:email", s.forgottenPassword)
	r.PATCH("/update-password/:token", s.updatePassword)

	users := r.Group("/users", s.requireScopes(auth.ScopeUsers))
	{
		users.POST("", s.createUser)
		users.GET("", s.listUsers)
		users.GET("/:id", s.getUser)
		users.DELETE("/:id", s.deleteUser)
		users.GET("/:id/scopes", s.getUserScopes)
		users.POST("/:id/scopes", s.addUserScope)
		users.DELETE("/:id/scopes/:scope_id", s.removeUserScope)
	}

	scopes := r.Group("/scopes", s.requireScopes(auth.ScopeAdmin))
	{
		scopes.POST("", s.createScope)
		scopes.GET("", s.listScopes)
		scopes.DELETE("/:id", s.deleteScope)
	}

	return r
}
