package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *HTTPServer) handleListPosts(c *gin.Context) {
	posts, err := s.posts.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (s *HTTPServer) handleGetPost(c *gin.Context) {
	post, err := s.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (s *HTTPServer) handleCreatePost(c *gin.Context) {
	claims := claimsFromContext(c)

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := s.posts.Create(c.Request.Context(), claims, req.Title, req.Content)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (s *HTTPServer) handleUpdatePost(c *gin.Context) {
	claims := claimsFromContext(c)

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := s.posts.Update(c.Request.Context(), claims, c.Param("id"), req.Title, req.Content)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (s *HTTPServer) handleDeletePost(c *gin.Context) {
	claims := claimsFromContext(c)

	if err := s.posts.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *HTTPServer) handleAddComment(c *gin.Context) {
	claims := claimsFromContext(c)

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := s.posts.AddComment(c.Request.Context(), claims, c.Param("id"), req.Content)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}
