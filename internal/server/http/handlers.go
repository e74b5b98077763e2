package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/transport"
	"github.com/gin-gonic/gin"
)

// respondError writes the status matching a service error. Internal details
// never leave the server; services have already logged them.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: common.ErrorUnauthorized.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorSelfDeletion):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: common.ErrorInternal.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
}

func (s *HTTPServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tokens, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transport.TokenPair(tokens))
}

func (s *HTTPServer) refreshToken(c *gin.Context) {
	tokens, err := s.auth.Refresh(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transport.TokenPair(tokens))
}

func (s *HTTPServer) forgottenPassword(c *gin.Context) {
	reset, err := s.resets.IssueForEmail(c.Request.Context(), c.Param("email"), 0)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.ForgottenPasswordResponse{ExpiresAt: reset.ExpiresAt})
}

func (s *HTTPServer) updatePassword(c *gin.Context) {
	var req api.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.resets.Consume(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) createUser(c *gin.Context) {
	var req api.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	u, err := s.users.Create(ctx, transport.CreateUserInput(&req))
	if err != nil {
		respondError(c, err)
		return
	}

	s.logger.Info(ctx, "user created", "user_id", u.ID, "by", transport.ActingUser(ctx))
	c.JSON(http.StatusCreated, transport.User(u))
}

func (s *HTTPServer) listUsers(c *gin.Context) {
	var req api.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	users, total, err := s.users.List(c.Request.Context(), transport.Page(&req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.ListUsersResponse{Data: transport.Users(users), Total: total})
}

func (s *HTTPServer) getUser(c *gin.Context) {
	u, err := s.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transport.User(u))
}

func (s *HTTPServer) deleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := s.users.Delete(ctx, id, transport.ActingUser(ctx)); err != nil {
		respondError(c, err)
		return
	}

	s.logger.Info(ctx, "user deleted", "user_id", id, "by", transport.ActingUser(ctx))
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) getUserScopes(c *gin.Context) {
	scopes, err := s.users.Scopes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.ScopesResponse{Scopes: scopes})
}

func (s *HTTPServer) addUserScope(c *gin.Context) {
	var req api.ScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.users.AddScope(c.Request.Context(), c.Param("id"), req.ID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) removeUserScope(c *gin.Context) {
	if err := s.users.RemoveScope(c.Request.Context(), c.Param("id"), c.Param("scope_id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) createScope(c *gin.Context) {
	var req api.ScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sc, err := s.scopes.Create(c.Request.Context(), req.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transport.Scope(sc))
}

func (s *HTTPServer) listScopes(c *gin.Context) {
	scopes, err := s.scopes.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.ListScopesResponse{Data: transport.Scopes(scopes)})
}

func (s *HTTPServer) deleteScope(c *gin.Context) {
	if err := s.scopes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
