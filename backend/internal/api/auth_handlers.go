package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Signup creates an unverified account
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.deps.Accounts.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(c, "signup", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "check your email to verify the account",
	})
}

// Verify consumes the token from the emailed link
func (h *Handler) Verify(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	user, err := h.deps.Accounts.Verify(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, "verify", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "verified": true})
}

// Login exchanges credentials for a bearer token
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.deps.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, session)
}
