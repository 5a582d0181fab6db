package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alivecn/funarcade/internal/common"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "username", user.Username)
	c.JSON(http.StatusCreated, gin.H{"message": "registration successful"})
}

func (s *HTTPServer) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, user, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// Unknown user and wrong password both read as a plain credential
		// failure, without telling which half was wrong.
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
			return
		}
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Logged in", "username", user.Username)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *HTTPServer) handleGetMe(c *gin.Context) {
	claims := claimsFromContext(c)

	user, err := s.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	Avatar     *string `json:"avatar"`
	ActiveSkin *string `json:"activeSkin"`
}

func (s *HTTPServer) handleUpdateMe(c *gin.Context) {
	claims := claimsFromContext(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := s.users.UpdateProfile(c.Request.Context(), claims.UserID, req.Avatar, req.ActiveSkin)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (s *HTTPServer) handleDeleteMe(c *gin.Context) {
	claims := claimsFromContext(c)

	// Deleting an already-removed account still reads as success: the token
	// outlives the row, and the caller only cares that the account is gone.
	if err := s.users.Delete(c.Request.Context(), claims.UserID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Account deleted", "username", claims.Username)
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

func (s *HTTPServer) handleAvatarUpload(c *gin.Context) {
	key, url, err := s.avatars.PresignAvatarUpload(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key, "url": url})
}

func (s *HTTPServer) handleAvatarURL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	url, err := s.avatars.PresignAvatarGet(c.Request.Context(), key)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
